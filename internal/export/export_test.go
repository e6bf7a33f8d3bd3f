package export

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sub(kv ...any) application.Submission {
	var fields []application.Field
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, application.Field{Key: kv[i].(string), Value: kv[i+1]})
	}
	return application.NewSubmission(fields...)
}

func TestCSVQuotesSpecialCells(t *testing.T) {
	out, err := CSV([]application.Submission{
		sub("name", "A", "regNo", "1"),
		sub("name", "B, C", "regNo", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "name,regNo\nA,1\n\"B, C\",2\n", out)
}

func TestCSVEmpty(t *testing.T) {
	out, err := CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestCSVHeadersFromFirstRecord(t *testing.T) {
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	out, err := CSV([]application.Submission{
		sub("_id", "x1", "name", "Jane", "submittedAt", at),
		sub("_id", "x2", "note", "ignored", "name", `Say "hi"`),
		sub("_id", "x3", "name", "line\nbreak", "submittedAt", nil),
	})
	require.NoError(t, err)
	assert.Equal(t,
		"_id,name,submittedAt\n"+
			"x1,Jane,2024-07-01T10:00:00.000Z\n"+
			"x2,\"Say \"\"hi\"\"\",\n"+
			"x3,\"line\nbreak\",\n",
		out)
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "Jane_Doe_24CSE1234.pdf", ArchiveName("Jane Doe", "24CSE1234", "abc-My_CV.PDF", "application/pdf"))
	assert.Equal(t, "Jane_Doe_24CSE1234.png", ArchiveName("Jane Doe", "24CSE1234", "65a1b2c3", "image/png"))
	assert.Equal(t, "Jane_24CSE1234", ArchiveName("Jane", "24CSE1234", "blob", ""))
	assert.Equal(t, "etcpasswd_24CSE1234.docx", ArchiveName("../etc/passwd", "24CSE1234", "x-cv.docx", ""))
	assert.Equal(t, "attachment.pdf", ArchiveName("", "", "cv.pdf", ""))
}

func TestArchiveDeduplicatesNames(t *testing.T) {
	a := NewArchive()
	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	for _, body := range []string{"one", "two", "three"} {
		_, err := a.Add("Jane_24CSE1234.pdf", at, []byte(body))
		require.NoError(t, err)
	}
	name, err := a.Add("Jane_24CSE1234-2.pdf", at, []byte("four"))
	require.NoError(t, err)
	assert.Equal(t, "Jane_24CSE1234-2-2.pdf", name)
	assert.Equal(t, 4, a.Len())

	b, err := a.Bytes()
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(rc)
		rc.Close()
		got[f.Name] = string(data)
	}
	assert.Equal(t, map[string]string{
		"Jane_24CSE1234.pdf":     "one",
		"Jane_24CSE1234-2.pdf":   "two",
		"Jane_24CSE1234-3.pdf":   "three",
		"Jane_24CSE1234-2-2.pdf": "four",
	}, got)
}
