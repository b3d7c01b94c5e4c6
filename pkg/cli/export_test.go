package cli

var ParseTargetTime = parseTargetTime
