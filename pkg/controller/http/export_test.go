package http

var VerifySlackSignature = verifySlackSignature

const (
	MsgApprovalExpired   = msgApprovalExpired
	MsgContextReceived   = msgContextReceived
	MsgTodoUsage         = msgTodoUsage
	MsgMissingNotifyText = msgMissingNotifyText
)
