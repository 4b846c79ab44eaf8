// Package command parses the free-text chat command grammar into
// structured triggers. Parsing stays at the boundary; the session core
// only ever sees structured requests.
package command

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/roomtalk/roomtalk/internal/room/events"
)

// Command prefixes recognized in chat input.
const (
	QuizPrefix    = "/quiz"
	AnswerPrefix  = "/answer"
	WhisperPrefix = "/w"
)

// DefaultQuizDurationSec applies when the /quiz command omits 제한시간.
const DefaultQuizDurationSec = 180

var (
	// ErrBadQuizCommand reports a /quiz line the grammar cannot parse.
	ErrBadQuizCommand = errors.New("usage: /quiz 질문: ... 정답: ... 제한시간: ...")
	// ErrBadWhisper reports a /w line without a target and message.
	ErrBadWhisper = errors.New("usage: /w <nickname> <message>")
)

// Tolerant extraction: the question runs up to the 정답 marker, the answer
// up to 제한시간 or end of input.
var (
	questionRe = regexp.MustCompile(`(?s)질문:\s*(.*?)\s*정답:`)
	answerRe   = regexp.MustCompile(`(?s)정답:\s*(.*?)\s*(?:제한시간:|$)`)
	durationRe = regexp.MustCompile(`제한시간:\s*(\d+)`)
)

// isCommand matches the bare prefix or the prefix followed by a space, so
// lines like "/quizzes tonight?" stay ordinary chat.
func isCommand(message, prefix string) bool {
	return message == prefix || strings.HasPrefix(message, prefix+" ")
}

// IsQuiz reports whether a chat line is a /quiz command.
func IsQuiz(message string) bool { return isCommand(message, QuizPrefix) }

// IsAnswer reports whether a chat line is an /answer command.
func IsAnswer(message string) bool { return isCommand(message, AnswerPrefix) }

// IsWhisper reports whether a chat line is a /w command.
func IsWhisper(message string) bool { return strings.HasPrefix(message, WhisperPrefix+" ") }

// ParseQuiz extracts a start-quiz request from a /quiz chat line.
func ParseQuiz(message string) (events.StartQuizRequest, error) {
	questionMatch := questionRe.FindStringSubmatch(message)
	answerMatch := answerRe.FindStringSubmatch(message)
	if questionMatch == nil || answerMatch == nil {
		return events.StartQuizRequest{}, ErrBadQuizCommand
	}

	question := strings.TrimSpace(questionMatch[1])
	answer := strings.TrimSpace(answerMatch[1])
	if question == "" || answer == "" {
		return events.StartQuizRequest{}, ErrBadQuizCommand
	}

	duration := DefaultQuizDurationSec
	if durationMatch := durationRe.FindStringSubmatch(message); durationMatch != nil {
		parsed, err := strconv.Atoi(durationMatch[1])
		if err != nil || parsed <= 0 {
			return events.StartQuizRequest{}, ErrBadQuizCommand
		}
		duration = parsed
	}

	return events.StartQuizRequest{
		Question:    question,
		Answer:      answer,
		DurationSec: duration,
	}, nil
}

// ParseAnswer extracts the submitted answer from an /answer chat line.
func ParseAnswer(message string) string {
	return strings.TrimSpace(strings.TrimPrefix(message, AnswerPrefix))
}

// ParseWhisper extracts the target nickname and text from a /w chat line.
func ParseWhisper(message string) (nickname, text string, err error) {
	rest := strings.TrimSpace(strings.TrimPrefix(message, WhisperPrefix))
	parts := strings.SplitN(rest, " ", 2)
	if len(parts) < 2 || parts[0] == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", ErrBadWhisper
	}
	return parts[0], strings.TrimSpace(parts[1]), nil
}
