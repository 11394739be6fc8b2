package importer

import (
	"fmt"
	"log/slog"

	"github.com/yhlin/memberdir/internal/models"
)

// Column header aliases, tried in order. The import spreadsheets historically
// carry Traditional or Simplified Chinese headers, so those take precedence;
// English variants are accepted after them.
var (
	accountAliases  = []string{"會員帳號", "会员账号", "帳號", "账号", "account", "member account", "username"}
	nameAliases     = []string{"會員姓名", "会员姓名", "姓名", "名称", "display name", "name", "member name"}
	passwordAliases = []string{"帳號密碼", "账号密码", "密碼", "密码", "password", "pass"}
	phoneAliases    = []string{"會員連絡電話", "会员连络电话", "連絡電話", "连络电话", "電話", "电话", "phone", "telephone", "contact phone"}
	addressAliases  = []string{"會員地址", "会员地址", "地址", "address"}
)

const minImportPasswordLen = 4

// SkippedRow records a dropped spreadsheet row and why it was dropped.
type SkippedRow struct {
	Row    int    `json:"row"` // 1-based spreadsheet row number (header is row 1)
	Reason string `json:"reason"`
}

func resolve(row RawRow, aliases []string) string {
	for _, alias := range aliases {
		if v := row[alias]; v != "" {
			return v
		}
	}
	return ""
}

// ParseRows maps raw spreadsheet rows onto import candidates. Rows missing
// account, display name or password, or with a password under 4 characters,
// are dropped with a warning; a bad row never fails the batch.
func ParseRows(rows []RawRow, logger *slog.Logger) ([]models.ImportCandidate, []SkippedRow) {
	candidates := make([]models.ImportCandidate, 0, len(rows))
	skipped := make([]SkippedRow, 0)

	for i, row := range rows {
		// +2: rows are 0-indexed here and row 1 of the sheet is the header
		sheetRow := i + 2

		account := resolve(row, accountAliases)
		name := resolve(row, nameAliases)
		password := resolve(row, passwordAliases)

		if account == "" || name == "" || password == "" {
			reason := "missing required fields"
			logger.Warn("import row skipped",
				slog.Int("row", sheetRow),
				slog.String("reason", reason),
			)
			skipped = append(skipped, SkippedRow{Row: sheetRow, Reason: reason})
			continue
		}

		if len(password) < minImportPasswordLen {
			reason := fmt.Sprintf("password shorter than %d characters", minImportPasswordLen)
			logger.Warn("import row skipped",
				slog.Int("row", sheetRow),
				slog.String("reason", reason),
			)
			skipped = append(skipped, SkippedRow{Row: sheetRow, Reason: reason})
			continue
		}

		candidates = append(candidates, models.ImportCandidate{
			Account:     account,
			DisplayName: name,
			Password:    password,
			Phone:       resolve(row, phoneAliases),
			Address:     resolve(row, addressAliases),
		})
	}

	return candidates, skipped
}
