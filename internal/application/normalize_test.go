package application

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_OptionalBlankBecomesAbsent(t *testing.T) {
	f := validFields()
	f["previousExperience"] = "   "
	f["bonusEssay1"] = ""
	f["bonusEssay2"] = "I write poems."
	f["tertiaryPreference"] = "\t"
	in := Normalize(f, nil)

	vals := in.Values()
	assert.NotContains(t, vals, FieldPreviousExperience)
	assert.NotContains(t, vals, FieldBonusEssay1)
	assert.NotContains(t, vals, FieldTertiaryPreference)
	assert.Equal(t, "I write poems.", vals[FieldBonusEssay2])

	rec, verr := NewValidator(Limits{}).Validate(in)
	require.Nil(t, verr)
	assert.Empty(t, rec.PreviousExperience)
	assert.Equal(t, "I write poems.", rec.BonusEssay2)
}

func TestNormalize_RequiredFieldsUnchanged(t *testing.T) {
	f := validFields()
	f["name"] = " Jane Doe "
	in := Normalize(f, nil)
	assert.Equal(t, " Jane Doe ", in.Name)
}

func TestNormalize_FormValuesAndUnknownKeys(t *testing.T) {
	in := Normalize(map[string]any{
		"name":    []string{"Jane", "ignored"},
		"regNo":   []string{},
		"isAdmin": "true",
	}, nil)
	assert.Equal(t, "Jane", in.Name)
	assert.Empty(t, in.RegNo)
	assert.Equal(t, map[string]string{FieldName: "Jane"}, in.Values())
}

func TestNormalize_EmptyFilePartDropped(t *testing.T) {
	in := Normalize(validFields(), &Attachment{})
	assert.Nil(t, in.Resume)
}

func TestNormalize_SniffsGenericContentType(t *testing.T) {
	body := "%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"
	a := &Attachment{Filename: "cv", ContentType: "application/octet-stream", Size: int64(len(body)), Content: strings.NewReader(body)}
	in := Normalize(validFields(), a)
	require.NotNil(t, in.Resume)
	assert.Equal(t, "application/pdf", in.Resume.ContentType)

	got, err := io.ReadAll(in.Resume.Content)
	require.NoError(t, err)
	assert.Equal(t, body, string(got), "sniffing must not consume the upload")
}

func TestNormalize_KeepsDeclaredContentType(t *testing.T) {
	a := &Attachment{Filename: "cv.docx", ContentType: "application/msword", Size: 3, Content: strings.NewReader("abc")}
	in := Normalize(validFields(), a)
	assert.Equal(t, "application/msword", in.Resume.ContentType)
}
