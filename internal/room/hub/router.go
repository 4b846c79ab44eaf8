package hub

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/roomtalk/roomtalk/internal/room/command"
	"github.com/roomtalk/roomtalk/internal/room/events"
)

// routeClientMessage decodes one inbound message and dispatches it to
// presence, chat, or the session registry. Malformed input degrades to a
// directed error or a debug log, never to a dropped connection.
func (r *Room) routeClientMessage(c *Connection, raw []byte) {
	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", c.ID).
			Msg("discarding unparseable client message")
		return
	}

	switch msg.Type {
	case events.ClientSetNickname:
		var nickname string
		if err := json.Unmarshal(msg.Data, &nickname); err == nil {
			r.handleSetNickname(c, strings.TrimSpace(nickname))
		}

	case events.ClientChangeNickname:
		var nickname string
		if err := json.Unmarshal(msg.Data, &nickname); err == nil {
			r.handleChangeNickname(c, strings.TrimSpace(nickname))
		}

	case events.ClientChatMessage:
		var message string
		if err := json.Unmarshal(msg.Data, &message); err == nil {
			r.handleChat(c, message)
		}

	case events.ClientStartQuiz:
		var req events.StartQuizRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			r.Send(c.ID, events.TypeQuizError, command.ErrBadQuizCommand.Error())
			return
		}
		nickname, _ := r.roster.Name(c.ID)
		r.registry.StartQuiz(c.ID, nickname, req)

	case events.ClientSubmitAnswer:
		var answer string
		if err := json.Unmarshal(msg.Data, &answer); err == nil {
			nickname, _ := r.roster.Name(c.ID)
			r.registry.SubmitAnswer(c.ID, nickname, strings.TrimSpace(answer))
		}

	case events.ClientEndQuiz:
		r.registry.EndQuiz(c.ID)

	case events.ClientStartVote:
		var req events.StartVoteRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			r.Send(c.ID, events.TypeVoteError, "malformed start_vote request")
			return
		}
		nickname, _ := r.roster.Name(c.ID)
		r.registry.StartVote(c.ID, nickname, req)

	case events.ClientSubmitVote:
		var selection events.Selection
		if err := json.Unmarshal(msg.Data, &selection); err != nil {
			r.Send(c.ID, events.TypeVoteError, err.Error())
			return
		}
		r.registry.SubmitVote(c.ID, selection)

	case events.ClientEndVote:
		r.registry.EndVote(c.ID)

	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("type", msg.Type).
			Msg("unknown client message type")
	}
}

// handleSetNickname registers a nickname on join. A rejected join closes
// the connection, matching the service's original join contract.
func (r *Room) handleSetNickname(c *Connection, nickname string) {
	if nickname == "" {
		r.Send(c.ID, events.TypeNicknameError, events.NicknameErrorPayload{
			Msg:    "nickname must not be empty",
			Source: "join",
		})
		return
	}
	if err := r.roster.Join(c.ID, nickname); err != nil {
		r.Send(c.ID, events.TypeNicknameError, events.NicknameErrorPayload{
			Msg:    err.Error(),
			Source: "join",
		})
		c.Conn.Close()
		return
	}

	r.Broadcast(events.TypeSystemMessage, fmt.Sprintf("%s joined.", nickname))
	r.broadcastRosterState()

	// Late joiner catches up on whichever session is live.
	r.registry.SendSessionInfo(c.ID)
}

// handleChangeNickname renames a participant. Rejection keeps the
// connection open.
func (r *Room) handleChangeNickname(c *Connection, nickname string) {
	if nickname == "" {
		return
	}
	old, err := r.roster.Rename(c.ID, nickname)
	if err != nil {
		r.Send(c.ID, events.TypeNicknameError, events.NicknameErrorPayload{
			Msg:    err.Error(),
			Source: "change",
		})
		return
	}

	r.Broadcast(events.TypeSystemMessage, fmt.Sprintf("%s is now known as %s.", old, nickname))
	r.broadcastRosterState()
}

// handleChat relays a chat line, first peeling off the command grammar.
func (r *Room) handleChat(c *Connection, message string) {
	nickname, joined := r.roster.Name(c.ID)
	if !joined {
		return
	}

	switch {
	case command.IsQuiz(message):
		req, err := command.ParseQuiz(message)
		if err != nil {
			r.Send(c.ID, events.TypeQuizError, err.Error())
			return
		}
		r.registry.StartQuiz(c.ID, nickname, req)

	case command.IsAnswer(message):
		r.registry.SubmitAnswer(c.ID, nickname, command.ParseAnswer(message))

	case command.IsWhisper(message):
		r.handleWhisper(c, nickname, message)

	default:
		r.Broadcast(events.TypeChatMessage, events.ChatMessagePayload{
			Nickname: nickname,
			Message:  message,
			Time:     r.hub.clock.Now().Format("15:04"),
		})
	}
}

// handleWhisper routes a private message to the participant holding the
// target nickname.
func (r *Room) handleWhisper(c *Connection, from, message string) {
	target, text, err := command.ParseWhisper(message)
	if err != nil {
		r.Send(c.ID, events.TypeSystemMessage, err.Error())
		return
	}
	targetID, ok := r.roster.Resolve(target)
	if !ok {
		r.Send(c.ID, events.TypeSystemMessage, fmt.Sprintf("no participant named %q", target))
		return
	}
	r.Send(targetID, events.TypePrivateMessage, events.PrivateMessagePayload{
		From:    from,
		Message: text,
		Time:    r.hub.clock.Now().Format("15:04"),
	})
}
