package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"uno-score-bot/internal/engine"
	"uno-score-bot/internal/model"
	"uno-score-bot/internal/service"
)

// Callback data is "uno_<action>_<game id>_<param>". Telegram caps it at 64 bytes, so
// winners are referenced by their index among the game's zero scorers.
const callbackPrefix = "uno_"

const (
	actionWinner = "win"
	actionType   = "type"
)

func encodeCallback(action, gameID string, param int) string {
	return fmt.Sprintf("%s%s_%s_%d", callbackPrefix, action, gameID, param)
}

func decodeCallback(data string) (action, gameID string, param int, ok bool) {
	// Buttons built with markup.Data carry a \f marker.
	data = strings.TrimPrefix(data, "\f")
	if !strings.HasPrefix(data, callbackPrefix) {
		return "", "", 0, false
	}
	parts := strings.SplitN(strings.TrimPrefix(data, callbackPrefix), "_", 2)
	if len(parts) != 2 {
		return "", "", 0, false
	}
	i := strings.LastIndexByte(parts[1], '_')
	if i <= 0 {
		return "", "", 0, false
	}
	param, err := strconv.Atoi(parts[1][i+1:])
	if err != nil {
		return "", "", 0, false
	}
	return parts[0], parts[1][:i], param, true
}

// buildRecordPanel offers one button per zero scorer of a tied game, plus a button
// that cycles the game type.
func buildRecordPanel(g model.GameRecord, players []string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows [][]tele.InlineButton

	if o := engine.Classify(g, players); !g.IsOpen && o.ZeroTie() {
		var row []tele.InlineButton
		for i, p := range o.ZeroScorers {
			label := "👑 " + p
			if g.TrueWinner == p {
				label = "👑✓ " + p
			}
			row = append(row, tele.InlineButton{Text: label, Data: encodeCallback(actionWinner, g.ID, i)})
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	rows = append(rows, []tele.InlineButton{
		{Text: "🔁 " + string(g.Type), Data: encodeCallback(actionType, g.ID, 0)},
	})

	markup.InlineKeyboard = rows
	return markup
}

// HandleCallback handles the buttons under a recorded game.
func (h *ScoreHandler) HandleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	action, gameID, param, ok := decodeCallback(cb.Data)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ 无效操作"})
	}

	ctx := context.Background()
	id := bookID(c)

	var (
		rec model.GameRecord
		err error
	)
	switch action {
	case actionWinner:
		rec, err = h.scores.ToggleTrueWinnerAt(ctx, id, gameID, param)
	case actionType:
		rec, err = h.scores.CycleType(ctx, id, gameID)
	default:
		return c.Respond(&tele.CallbackResponse{Text: "❌ 无效操作"})
	}
	if err != nil && !service.IsSyncWarning(err) {
		return c.Respond(&tele.CallbackResponse{Text: errorText(err), ShowAlert: true})
	}

	b, loadErr := h.scores.Load(ctx, id)
	if loadErr == nil {
		players := b.Players()
		if editErr := c.Edit(renderRecorded(rec, players), buildRecordPanel(rec, players)); editErr != nil {
			log.Debug().Err(editErr).Str("game_id", gameID).Msg("Failed to edit record message")
		}
	}
	resp := &tele.CallbackResponse{Text: "✅ 已更新"}
	if err != nil {
		resp.Text = strings.TrimSpace(syncWarning)
		resp.ShowAlert = true
	}
	return c.Respond(resp)
}
