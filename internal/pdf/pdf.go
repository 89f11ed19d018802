// Package pdf implements the document encoder on top of pdfcpu.
package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type Encoder struct {
	conf *model.Configuration
}

func NewEncoder() *Encoder {
	return &Encoder{conf: model.NewDefaultConfiguration()}
}

// Encode writes one PDF with one page per image, in the given order.
func (e *Encoder) Encode(images []string, out string) error {
	if len(images) == 0 {
		return fmt.Errorf("encode %s: no images", out)
	}

	if err := api.ImportImagesFile(images, out, nil, e.conf); err != nil {
		return fmt.Errorf("encode %s: %w", out, err)
	}

	return nil
}

// Merge concatenates the input documents' pages, in order, into out.
func (e *Encoder) Merge(inputs []string, out string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("merge %s: no documents", out)
	}

	if err := api.MergeCreateFile(inputs, out, false, e.conf); err != nil {
		return fmt.Errorf("merge %s: %w", out, err)
	}

	return nil
}
