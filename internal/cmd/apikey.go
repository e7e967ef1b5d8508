package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/egodrive/internal/configpaths"
	"github.com/Alia5/egodrive/internal/server/api"
	"github.com/Alia5/egodrive/internal/server/api/auth"
)

const keyFileName = "egodrive.key.txt"

func keyFilePath(cfg api.ServerConfig) (string, error) {
	if cfg.KeyFile != "" {
		return cfg.KeyFile, nil
	}
	p, err := configpaths.DefaultDataPath(keyFileName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	return p, nil
}

// resolveAPIPassword fills cfg.Password from the key file, generating and
// storing a new key on first use. Nothing happens when a password is set or
// authentication is not required.
func resolveAPIPassword(cfg *api.ServerConfig, logger *slog.Logger) error {
	if cfg.Password != "" || !cfg.RequireAuth {
		return nil
	}
	path, err := keyFilePath(*cfg)
	if err != nil {
		return err
	}
	if pwd, err := os.ReadFile(path); err == nil {
		cfg.Password = strings.TrimSpace(string(pwd))
		if cfg.Password != "" {
			return nil
		}
	}

	newPwd, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate new API password: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create data dir for key file: %w", err)
	}
	if err := os.WriteFile(path, []byte(newPwd), 0o600); err != nil {
		return fmt.Errorf("failed to write new API password to file: %w", err)
	}
	cfg.Password = newPwd
	logger.Info("Generated API server password", "path", path)
	logger.Info("-------------------------------------")
	logger.Info("Your egodrive API password is:")
	logger.Info("-------------------------------------")
	logger.Info(newPwd)
	logger.Info("-------------------------------------")
	logger.Info("You can change this password at any time by editing the file")
	return nil
}
