// Package export writes a knowledge base back out in the text syntax read by
// package parse.
package export

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/deduce/pkg/deduce/kb"
)

// Writer persists rendered knowledge to a destination.
type Writer interface {
	WriteKnowledge(ctx context.Context, content string) error
}

// FileWriter writes to a file, replacing it.
type FileWriter struct {
	Path string
}

func (w FileWriter) WriteKnowledge(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(w.Path, []byte(content), 0644)
}

// Exporter renders the asserted facts and rules of a knowledge base. Derived
// statements are left out; loading the output derives them again.
type Exporter struct {
	Writer Writer
}

func (e *Exporter) Export(ctx context.Context, k *kb.KnowledgeBase) error {
	if e.Writer == nil {
		return fmt.Errorf("knowledge exporter: nil writer")
	}
	return e.Writer.WriteKnowledge(ctx, Render(k))
}

// Render returns the asserted statements wrapped in a kb block, facts first.
func Render(k *kb.KnowledgeBase) string {
	var b strings.Builder
	b.WriteString("kb {\n")
	for _, f := range k.Facts() {
		if f.Asserted() {
			fmt.Fprintf(&b, "    fact: %s;\n", f)
		}
	}
	for _, r := range k.Rules() {
		if r.Asserted() {
			fmt.Fprintf(&b, "    rule: %s;\n", r)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
