package provider

import (
	"errors"
	"fmt"
	"testing"

	"market-mood/internal/domain"
)

func TestFetchErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: i/o timeout")
	err := networkError(domain.SourceCNNFearGreed, cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected cause in error chain")
	}

	wrapped := fmt.Errorf("refresh cycle: %w", err)
	fe, ok := AsFetchError(wrapped)
	if !ok {
		t.Fatal("expected FetchError in wrapped chain")
	}
	if fe.Kind != ErrKindNetwork || fe.Source != domain.SourceCNNFearGreed {
		t.Fatalf("unexpected classification: %+v", fe)
	}
}

func TestAsFetchErrorRejectsPlainErrors(t *testing.T) {
	t.Parallel()

	if _, ok := AsFetchError(errors.New("plain")); ok {
		t.Fatal("plain error must not classify as FetchError")
	}
}

func TestParseErrorMessageNamesSourceAndKind(t *testing.T) {
	t.Parallel()

	err := parseError(domain.SourceNAAIM, errors.New("no exposure value found"))
	msg := err.Error()
	if msg == "" || err.Kind != ErrKindParse {
		t.Fatalf("unexpected error: %q kind=%s", msg, err.Kind)
	}
}
