package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"uno-score-bot/internal/importer"
	"uno-score-bot/internal/service"
)

// maxImportSize caps uploaded files.
const maxImportSize = 5 << 20

// FileHandler handles imports from uploaded documents and exports.
type FileHandler struct {
	scores  *service.ScoreService
	ranking *service.RankingService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(scores *service.ScoreService, ranking *service.RankingService) *FileHandler {
	return &FileHandler{scores: scores, ranking: ranking}
}

// HandleDocument imports an uploaded .csv, .xlsx or .json file. A caption holding a
// year completes m/d dates in sheets; the current year is used otherwise.
func (h *FileHandler) HandleDocument(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Document == nil {
		return nil
	}
	doc := msg.Document
	if _, err := importer.FormatFor(doc.FileName); err != nil {
		// Not ours; stay quiet for unrelated files.
		return nil
	}
	if doc.FileSize > maxImportSize {
		return c.Reply("❌ 文件太大")
	}

	year, err := parseYear(strings.Fields(msg.Caption), h.ranking.CurrentYear())
	if err != nil {
		return c.Reply(err.Error())
	}

	rc, err := c.Bot().File(&doc.File)
	if err != nil {
		log.Error().Err(err).Str("file", doc.FileName).Msg("Failed to download document")
		return c.Reply("❌ 下载文件失败，请稍后重试")
	}
	defer rc.Close()

	res, err := h.scores.Import(context.Background(), bookID(c), doc.FileName, io.LimitReader(rc, maxImportSize), year)
	if err != nil && !service.IsSyncWarning(err) {
		if errors.Is(err, service.ErrNothingToImport) || errors.Is(err, importer.ErrUnsupportedFormat) {
			return c.Reply(errorText(err))
		}
		return c.Reply("❌ 导入失败: " + err.Error())
	}
	return reply(c, renderImport(res), err)
}

func renderImport(res service.ImportResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ 已导入 %d 局", res.Added)
	if n := len(res.Report.Skipped); n > 0 {
		fmt.Fprintf(&sb, "\n⏭ 跳过 %d 行", n)
		for i, s := range res.Report.Skipped {
			if i == 5 {
				sb.WriteString("\n…")
				break
			}
			fmt.Fprintf(&sb, "\n  第 %d 行: %s", s.Line, s.Reason)
		}
	}
	return sb.String()
}

// HandleExport handles the /export command. It sends the whole book as JSON.
func (h *FileHandler) HandleExport(c tele.Context) error {
	id := bookID(c)
	var buf bytes.Buffer
	if err := h.scores.Export(context.Background(), id, &buf); err != nil {
		return reply(c, "", err)
	}
	return c.Reply(&tele.Document{
		File:     tele.FromReader(&buf),
		FileName: fmt.Sprintf("unoscore-%d.json", id),
		Caption:  "📦 导出完成",
	})
}
