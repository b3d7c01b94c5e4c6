package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/usecase"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
	"github.com/slack-go/slack"
)

// Slash command replies
const (
	msgMissingNotifyText = "Missing `text` argument for /notify"
	msgMissingTodoText   = "Missing `text` argument for /todo add"
	msgTodoAdded         = "Added to your todo list."
	msgNoOpenTodos       = "You have no open todos."
	msgOpenTodosHeader   = "Your open todos:"
	msgInvalidTodoIndex  = "Provide a valid index for /todo done."
	msgTodoIndexNotFound = "That todo index does not exist."
	msgTodoDone          = "Marked as done."
	msgTodoCleared       = "Cleared completed todos."
	msgTodoUsage         = "Usage: /todo add <text> | /todo list | /todo done <index> | /todo clear"
	msgRequestFailed     = "Sorry, something went wrong. Please try again."
)

// HandleCommand handles /notify and /todo. Replies are ephemeral.
func (h *SlackHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slash command"), http.StatusBadRequest)
		return
	}

	var reply string
	switch cmd.Command {
	case "/notify":
		reply = h.notifyCommand(r, &cmd)
	case "/todo":
		reply = h.todoCommand(r, &cmd)
	default:
		logging.From(ctx).Warn("unknown slash command", "command", cmd.Command)
		reply = "Unknown command " + cmd.Command
	}

	writeEphemeral(w, r, reply)
}

func (h *SlackHandler) notifyCommand(r *http.Request, cmd *slack.SlashCommand) string {
	ctx := r.Context()

	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return msgMissingNotifyText
	}

	reply, err := h.uc.Notify.Request(ctx, cmd.UserID, cmd.ChannelID, text)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to handle /notify")
		return msgRequestFailed
	}
	return reply
}

func (h *SlackHandler) todoCommand(r *http.Request, cmd *slack.SlashCommand) string {
	ctx := r.Context()

	sub, rest, _ := strings.Cut(strings.TrimSpace(cmd.Text), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(sub) {
	case "add":
		if rest == "" {
			return msgMissingTodoText
		}
		if _, err := h.uc.Todo.Add(ctx, cmd.UserID, rest); err != nil {
			_ = errutil.Handle(ctx, err, "failed to add todo")
			return fmt.Sprintf("Failed to create todo: %v", err)
		}
		return msgTodoAdded

	case "list":
		items, err := h.uc.Todo.ListOpen(ctx, cmd.UserID)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to list todos")
			return msgRequestFailed
		}
		if len(items) == 0 {
			return msgNoOpenTodos
		}
		return model.FormatTodoList(msgOpenTodosHeader, items)

	case "done":
		index, err := strconv.Atoi(rest)
		if err != nil || index <= 0 {
			return msgInvalidTodoIndex
		}
		if err := h.uc.Todo.Done(ctx, cmd.UserID, index); err != nil {
			if errors.Is(err, usecase.ErrTodoIndexNotFound) {
				return msgTodoIndexNotFound
			}
			_ = errutil.Handle(ctx, err, "failed to complete todo")
			return msgRequestFailed
		}
		return msgTodoDone

	case "clear":
		if _, err := h.uc.Todo.Clear(ctx, cmd.UserID); err != nil {
			_ = errutil.Handle(ctx, err, "failed to clear todos")
			return msgRequestFailed
		}
		return msgTodoCleared

	default:
		return msgTodoUsage
	}
}

func writeEphemeral(w http.ResponseWriter, r *http.Request, text string) {
	data, err := json.Marshal(&slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal command response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck // header already committed
}
