package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aliskhannn/talaffuz-bot/internal/domain/entities"
)

// Callback action constants.
const (
	actionLevel  = "level"
	actionLesson = "action"
	actionMenu   = "menu"
)

// Lesson sub-actions.
const (
	lessonRetry = "retry"
	lessonSkip  = "skip"
	lessonNext  = "next"
)

var ErrUnknownCallback = errors.New("unknown callback data")

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// decodeAction maps callback data to a domain action.
// Unknown level names resolve to the easy level.
func decodeAction(data string) (entities.Action, error) {
	cd := decodeCallback(data)
	if len(cd.Params) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
	}

	switch cd.Action {
	case actionLevel:
		return entities.SelectLevel{Level: entities.ParseLevel(cd.Params[0])}, nil

	case actionLesson:
		switch cd.Params[0] {
		case lessonRetry:
			return entities.Retry{}, nil
		case lessonSkip:
			return entities.Skip{}, nil
		case lessonNext:
			return entities.Next{}, nil
		}

	case actionMenu:
		switch s := entities.MenuSection(cd.Params[0]); s {
		case entities.MenuMain, entities.MenuLessons, entities.MenuVocab,
			entities.MenuSettings, entities.MenuFeedback, entities.MenuShare:
			return entities.OpenMenu{Section: s}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}

// buildLevelCallback builds callback data for choosing a level.
func buildLevelCallback(l entities.Level) string {
	return callbackData{
		Action: actionLevel,
		Params: []string{l.String()},
	}.encode()
}

// buildLessonCallback builds callback data for retry, skip and next.
func buildLessonCallback(subAction string) string {
	return callbackData{
		Action: actionLesson,
		Params: []string{subAction},
	}.encode()
}

// buildMenuCallback builds callback data for opening a menu section.
func buildMenuCallback(section entities.MenuSection) string {
	return callbackData{
		Action: actionMenu,
		Params: []string{string(section)},
	}.encode()
}
