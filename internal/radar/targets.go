package radar

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// LoadTargets reads the saved-search URLs to monitor, one per line. A
// missing file is created empty so the operator has somewhere to add URLs.
func LoadTargets(path string, logger *zap.Logger) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return nil, fmt.Errorf("create targets file: %w", err)
		}
		logger.Info("targets file created, add at least one saved-search URL per line",
			zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			targets = append(targets, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}

	if len(targets) == 0 {
		logger.Info("no targets configured, add at least one saved-search URL per line",
			zap.String("path", path))
	}
	return targets, nil
}
