package github

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TokenSource names where a resolved token came from, for diagnostics. The
// token value itself is never logged.
type TokenSource string

const (
	TokenSourceFlag TokenSource = "flag"
	TokenSourceEnv  TokenSource = "env:GITHUB_TOKEN"
	TokenSourceGH   TokenSource = "gh"
)

// ghTokenTimeout bounds the gh CLI invocation so a broken gh config or
// credential helper cannot hang scan startup.
const ghTokenTimeout = 5 * time.Second

// ResolveToken resolves the GitHub access token for a scan.
//
// Precedence: the --token flag value, then GITHUB_TOKEN, then the GitHub CLI
// (`gh auth token -h github.com`). An empty result with a nil error means no
// token is available anywhere; the scan then runs under the anonymous rate
// limit.
func ResolveToken(ctx context.Context, flagToken string) (token string, source TokenSource, err error) {
	if tok := strings.TrimSpace(flagToken); tok != "" {
		return tok, TokenSourceFlag, nil
	}

	if env := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); env != "" {
		return env, TokenSourceEnv, nil
	}

	tok, ok, err := ghCLIToken(ctx)
	if err != nil {
		return "", "", err
	}
	if ok {
		return tok, TokenSourceGH, nil
	}
	return "", "", nil
}

// ghCLIToken asks an installed gh CLI for its stored token. A missing gh
// binary or a gh that is not logged in is "no token", not an error; gh's raw
// output is never surfaced in errors.
func ghCLIToken(ctx context.Context) (token string, ok bool, err error) {
	if _, lookErr := exec.LookPath("gh"); lookErr != nil {
		return "", false, nil
	}

	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, ghTokenTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, "gh", "auth", "token", "-h", "github.com")
	cmd.Env = append(envWithout("GH_PAGER="), "GH_PAGER=cat")

	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if cmdCtx.Err() != nil {
			return "", false, cmdCtx.Err()
		}
		return "", false, nil
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", false, nil
	}
	// A real token is a single whitespace-free line; anything else is gh
	// printing something other than a token.
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", false, errors.New("invalid token returned by gh: contains whitespace")
	}
	return tok, true, nil
}

// envWithout returns the process environment minus entries carrying the given
// prefix, so a replacement value can be appended without duplicates.
func envWithout(prefix string) []string {
	env := os.Environ()
	kept := env[:0]
	for _, entry := range env {
		if strings.HasPrefix(entry, prefix) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}
