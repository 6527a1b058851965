// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGuide_AllKindsDocumented(t *testing.T) {
	for _, k := range []Kind{KindScanFailed, KindWriteFailed, KindConfigInvalid, KindHookFailed} {
		if Guide(k) == "" {
			t.Errorf("Guide(%d) is empty", k)
		}
	}
	if Guide(KindUnknown) != "" {
		t.Error("KindUnknown should have no guide")
	}
}

func TestRenderGuide(t *testing.T) {
	orig := render
	t.Cleanup(func() { render = orig })

	var gotStyle string
	render = func(md, style string) (string, error) {
		gotStyle = style
		return "RENDERED:" + md, nil
	}

	err := fmt.Errorf("generate: %w", NewErrorContext().
		WithOperation("scan documents").
		WithKind(KindScanFailed).
		BuildError())

	out, rerr := RenderGuide(err, "notty")
	if rerr != nil {
		t.Fatalf("RenderGuide() error: %v", rerr)
	}
	if !strings.HasPrefix(out, "RENDERED:") || !strings.Contains(out, "Could not read the document tree") {
		t.Errorf("unexpected render output: %q", out)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}

	out, rerr = RenderGuide(errors.New("plain"), "notty")
	if rerr != nil || out != "" {
		t.Errorf("RenderGuide(plain) = %q, %v; want empty", out, rerr)
	}
}
