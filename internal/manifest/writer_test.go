package manifest_test

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"qslgen/internal/manifest"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func testPaths(dir string) manifest.Paths {
	return manifest.Paths{
		NoEmail:   filepath.Join(dir, "NOEMAIL.CSV"),
		WithEmail: filepath.Join(dir, "YESEMAIL.CSV"),
		All:       filepath.Join(dir, "SUCCESS.CSV"),
	}
}

func TestSetRoutesRowsByEmail(t *testing.T) {
	paths := testPaths(t.TempDir())
	set, err := manifest.Create(paths)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	rows := []manifest.Row{
		{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: "/out/W1AW.png", Address: "225 Main St, Newington, CT", State: "CT", ZipCode: "06111", Country: "USA"},
		{CallSign: "K1ABC", PNGPath: "/out/K1ABC.png", QTH: "Boston"},
		{CallSign: "N0CALL", Email: "   ", PNGPath: "/out/N0CALL.png"},
	}
	for _, row := range rows {
		if err := set.Add(row); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := set.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	noEmail := readCSV(t, paths.NoEmail)
	if len(noEmail) != 3 || noEmail[0][0] != "CALL_SIGN" || noEmail[1][0] != "K1ABC" || noEmail[2][0] != "N0CALL" {
		t.Fatalf("unexpected no-email manifest: %v", noEmail)
	}
	withEmail := readCSV(t, paths.WithEmail)
	if len(withEmail) != 2 {
		t.Fatalf("expected header + 1 row in with-email manifest, got %v", withEmail)
	}
	if strings.Join(withEmail[0], ",") != "CALL_SIGN,EMAIL,PNG_PATH" {
		t.Fatalf("unexpected with-email header: %v", withEmail[0])
	}
	if strings.Join(withEmail[1], ",") != "W1AW,w1aw@example.com,/out/W1AW.png" {
		t.Fatalf("unexpected with-email row: %v", withEmail[1])
	}
	all := readCSV(t, paths.All)
	if len(all) != 4 {
		t.Fatalf("expected header + 3 rows in all manifest, got %d", len(all))
	}
	if len(all[0]) != 8 || all[0][6] != "ZIP_CODE" {
		t.Fatalf("unexpected all header: %v", all[0])
	}
	if all[1][3] != "225 Main St, Newington, CT" || all[1][6] != "06111" || all[2][4] != "Boston" {
		t.Fatalf("unexpected all rows: %v", all[1:])
	}
	if got := set.Rows(); len(got) != 3 {
		t.Fatalf("expected 3 tracked rows, got %d", len(got))
	}
}

func TestCreateTruncatesExistingManifests(t *testing.T) {
	paths := testPaths(t.TempDir())
	if err := os.WriteFile(paths.NoEmail, []byte("stale\nrows\n"), 0o644); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	set, err := manifest.Create(paths)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := set.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	records := readCSV(t, paths.NoEmail)
	if len(records) != 1 || records[0][0] != "CALL_SIGN" {
		t.Fatalf("expected header only, got %v", records)
	}
}

func TestCreateRejectsEmptyPath(t *testing.T) {
	paths := testPaths(t.TempDir())
	paths.All = ""
	if _, err := manifest.Create(paths); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestWriterRejectsWrongWidth(t *testing.T) {
	w := manifest.NewWriter(&strings.Builder{}, manifest.WithEmailColumns)
	if err := w.Write([]string{"W1AW"}); err == nil {
		t.Fatal("expected width error")
	}
}

func TestReadWithEmailRoundTrip(t *testing.T) {
	paths := testPaths(t.TempDir())
	set, err := manifest.Create(paths)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := set.Add(manifest.Row{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: "/out/W1AW, copy.png"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := set.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rows, err := manifest.ReadWithEmail(paths.WithEmail)
	if err != nil {
		t.Fatalf("ReadWithEmail failed: %v", err)
	}
	if len(rows) != 1 || rows[0].CallSign != "W1AW" || rows[0].PNGPath != "/out/W1AW, copy.png" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestDecodeWithEmailRejectsWrongHeader(t *testing.T) {
	_, err := manifest.DecodeWithEmail(strings.NewReader("CALL,MAIL,FILE\n"))
	if !errors.Is(err, manifest.ErrHeaderMismatch) {
		t.Fatalf("expected header mismatch, got %v", err)
	}
	if _, err := manifest.DecodeWithEmail(strings.NewReader("")); !errors.Is(err, manifest.ErrHeaderMismatch) {
		t.Fatalf("expected header mismatch for empty input, got %v", err)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifests.xlsx")
	rows := []manifest.Row{
		{CallSign: "W1AW", Email: "w1aw@example.com", PNGPath: "/out/W1AW.png"},
		{CallSign: "K1ABC", PNGPath: "/out/K1ABC.png"},
	}
	if err := manifest.WriteWorkbook(path, rows); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != "SUCCESS,YESEMAIL,NOEMAIL" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}
	all, err := f.GetRows(manifest.SheetAll)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(all) != 3 || all[2][0] != "K1ABC" {
		t.Fatalf("unexpected SUCCESS sheet: %v", all)
	}
	withEmail, err := f.GetRows(manifest.SheetWithEmail)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(withEmail) != 2 || withEmail[1][1] != "w1aw@example.com" {
		t.Fatalf("unexpected YESEMAIL sheet: %v", withEmail)
	}
	noEmail, err := f.GetRows(manifest.SheetNoEmail)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(noEmail) != 2 || noEmail[1][0] != "K1ABC" {
		t.Fatalf("unexpected NOEMAIL sheet: %v", noEmail)
	}
}
