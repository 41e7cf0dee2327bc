package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var reMDHeading = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)

// Notebook summarizes .ipynb files. Unlike the text extractors it refuses
// malformed input: a notebook that is not valid JSON cannot be summarized
// honestly, so the error surfaces instead of a half-empty page.
type Notebook struct{}

func NewNotebook() *Notebook { return &Notebook{} }

func (n *Notebook) Type() Type { return TypeNotebook }

type nbDocument struct {
	Cells    []nbCell `json:"cells"`
	Metadata struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
}

type nbCell struct {
	CellType string   `json:"cell_type"`
	Source   nbSource `json:"source"`
}

// nbSource accepts both notebook source encodings: a single string or a
// list of line strings.
type nbSource string

func (s *nbSource) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = nbSource(single)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("cell source is neither string nor string list: %w", err)
	}
	*s = nbSource(strings.Join(lines, ""))
	return nil
}

func (n *Notebook) Extract(raw []byte) (*Summary, error) {
	sum := &Summary{}
	sum.AddTag(string(TypeNotebook))

	if len(strings.TrimSpace(string(raw))) == 0 {
		sum.AddStat("Cells", 0)
		sum.AddStat("Code Cells", 0)
		sum.AddStat("Markdown Cells", 0)
		return sum, nil
	}

	var doc nbDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}

	lang := doc.Metadata.LanguageInfo.Name
	if lang == "" {
		lang = doc.Metadata.KernelSpec.Language
	}
	if lang == "" {
		lang = "python"
	}

	code, markdown := 0, 0
	for _, cell := range doc.Cells {
		src := string(cell.Source)
		switch cell.CellType {
		case "code":
			code++
			if strings.TrimSpace(src) != "" {
				sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentSource, Text: src, Lang: lang})
			}
		case "markdown":
			markdown++
			for _, m := range reMDHeading.FindAllStringSubmatch(src, -1) {
				heading := strings.TrimSpace(m[1])
				if sum.Title == "" {
					sum.Title = heading
				}
				sum.Sections = append(sum.Sections, heading)
			}
			if strings.TrimSpace(src) != "" {
				sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentText, Text: src})
			}
		default:
			// Raw and unknown cell kinds pass through as narrative.
			if strings.TrimSpace(src) != "" {
				sum.Fragments = append(sum.Fragments, Fragment{Kind: FragmentText, Text: src})
			}
		}
	}

	sum.AddStat("Cells", len(doc.Cells))
	sum.AddStat("Code Cells", code)
	sum.AddStat("Markdown Cells", markdown)
	return sum, nil
}
