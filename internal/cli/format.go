package cli

import (
	"fmt"
	"path/filepath"

	"github.com/semmy-space/kgl/internal/config"
)

// defaultPageSize applies when neither --page-size nor page_size is set
const defaultPageSize = 20

// formatBytes renders a byte count with binary units
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// targetDir picks the directory for downloads: explicit path, then
// download_dir from config joined with name, then ./name.
func targetDir(cfg *config.Config, explicit, name string) string {
	if explicit != "" {
		return explicit
	}
	base := cfg.DownloadDir
	if base == "" {
		base = "."
	}
	return filepath.Join(base, name)
}

func pageSize(cfg *config.Config, flag int) int {
	if flag > 0 {
		return flag
	}
	return cfg.PageSizeOr(defaultPageSize)
}
