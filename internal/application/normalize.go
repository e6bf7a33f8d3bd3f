package application

import (
	"bytes"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of an attachment is inspected when its declared type
// cannot be trusted.
const sniffLen = 3072

var optionalFields = map[string]bool{
	FieldPreviousExperience: true,
	FieldTertiaryPreference: true,
	FieldBonusEssay1:        true,
	FieldBonusEssay2:        true,
}

// Normalize turns an untyped payload into an Input. JSON bodies and
// multipart forms are both reduced to a field map by the caller; file is the
// optional résumé part. Unknown keys are ignored. Non-text values are kept
// out of the Input and reported by Validate.
func Normalize(fields map[string]any, file *Attachment) Input {
	in := Input{Resume: file}
	for key := range fieldIndex {
		raw, ok := fields[key]
		if !ok || raw == nil {
			continue
		}
		var s string
		switch v := raw.(type) {
		case string:
			s = v
		case []string:
			if len(v) > 0 {
				s = v[0]
			}
		default:
			in.badTypes = append(in.badTypes, key)
			continue
		}
		if optionalFields[key] && strings.TrimSpace(s) == "" {
			continue
		}
		*in.field(key) = s
	}
	if file != nil && file.Size == 0 && file.Filename == "" {
		// browsers send an empty part when no file was chosen
		in.Resume = nil
	}
	if in.Resume != nil {
		sniff(in.Resume)
	}
	return in
}

// sniff replaces a missing or generic content type with one detected from the
// first bytes of the attachment. The peeked bytes are put back in front of
// the reader.
func sniff(a *Attachment) {
	switch mediaType(a.ContentType) {
	case "", "application/octet-stream":
	default:
		return
	}
	if a.Content == nil {
		return
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(a.Content, head)
	head = head[:n]
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		a.ContentType = ""
		return
	}
	a.Content = io.MultiReader(bytes.NewReader(head), a.Content)
	a.ContentType = mediaType(mimetype.Detect(head).String())
}

// Values returns the text fields of in keyed by field name. Absent optional
// fields are left out.
func (in Input) Values() map[string]string {
	out := map[string]string{}
	for key := range fieldIndex {
		if v := *in.field(key); v != "" {
			out[key] = v
		}
	}
	return out
}

var fieldIndex = map[string]func(*Input) *string{
	FieldName:                    func(in *Input) *string { return &in.Name },
	FieldRegNo:                   func(in *Input) *string { return &in.RegNo },
	FieldBranchAndYear:           func(in *Input) *string { return &in.BranchAndYear },
	FieldEmail:                   func(in *Input) *string { return &in.Email },
	FieldPhone:                   func(in *Input) *string { return &in.Phone },
	FieldPreviousExperience:      func(in *Input) *string { return &in.PreviousExperience },
	FieldPrimaryPreference:       func(in *Input) *string { return &in.PrimaryPreference },
	FieldSecondaryPreference:     func(in *Input) *string { return &in.SecondaryPreference },
	FieldTertiaryPreference:      func(in *Input) *string { return &in.TertiaryPreference },
	FieldDepartmentJustification: func(in *Input) *string { return &in.DepartmentJustification },
	FieldSkillsAndExperience:     func(in *Input) *string { return &in.SkillsAndExperience },
	FieldBonusEssay1:             func(in *Input) *string { return &in.BonusEssay1 },
	FieldBonusEssay2:             func(in *Input) *string { return &in.BonusEssay2 },
}

func (in *Input) field(key string) *string {
	return fieldIndex[key](in)
}
