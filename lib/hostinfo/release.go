package hostinfo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Codename reads DISTRIB_CODENAME from an lsb-release style file.
func (h *Host) Codename(ctx context.Context, lsbReleasePath string) (string, error) {
	f, err := os.Open(lsbReleasePath)
	if err != nil {
		return "", fmt.Errorf("open lsb-release: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		value, found := strings.CutPrefix(line, "DISTRIB_CODENAME=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"`)
		if value == "" {
			break
		}
		return value, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read lsb-release: %w", err)
	}
	return "", fmt.Errorf("%s: %w", lsbReleasePath, ErrNoCodename)
}
