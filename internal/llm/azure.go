package llm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const cognitiveScope = "https://cognitiveservices.azure.com/.default"

// azureToken acquires an Azure AD token for cognitive services. It tries the
// Azure CLI first (covers dev containers after `az login`), then falls back
// to a token provided via the environment.
func azureToken(ctx context.Context) (string, error) {
	out, cliErr := exec.CommandContext(
		ctx, "az", "account", "get-access-token",
		"--scope", cognitiveScope,
		"--query", "accessToken", "-o", "tsv",
	).Output()
	if cliErr == nil {
		if token := strings.TrimSpace(string(out)); token != "" {
			return token, nil
		}
	}

	if token := os.Getenv("AZURE_AD_TOKEN"); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("azure authentication failed: run 'az login --use-device-code' or set AZURE_AD_TOKEN: %v", cliErr)
}
