package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"presupuesto/internal/core"
)

const jsonIndent = "    "

// JSONFile persists a single document as indented UTF-8 JSON. The file is
// rewritten wholesale on every save.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string { return f.path }

// read decodes the document into v. It reports found=false when the file
// does not exist or is empty.
func (f *JSONFile) read(v any) (found bool, err error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("read", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, unavailable("decode", f.path, err)
	}
	return true, nil
}

// write encodes v next to the target and renames it into place.
func (f *JSONFile) write(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(v); err != nil {
		return unavailable("encode", f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return unavailable("create directory for", f.path, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return unavailable("write", f.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return unavailable("write", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return unavailable("write", f.path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return unavailable("write", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return unavailable("write", f.path, err)
	}
	return nil
}

// JSONRecordFile stores records as {"ingresos": [...], "gastos": [...]}.
type JSONRecordFile struct{ *JSONFile }

func NewJSONRecordFile(path string) *JSONRecordFile {
	return &JSONRecordFile{NewJSONFile(path)}
}

func (f *JSONRecordFile) LoadRecords(ctx context.Context) (core.Records, error) {
	var r core.Records
	if _, err := f.read(&r); err != nil {
		return core.EmptyRecords(), err
	}
	if r.Incomes == nil {
		r.Incomes = []core.Income{}
	}
	if r.Expenses == nil {
		r.Expenses = []core.Expense{}
	}
	return r, nil
}

func (f *JSONRecordFile) SaveRecords(ctx context.Context, r core.Records) error {
	if r.Incomes == nil {
		r.Incomes = []core.Income{}
	}
	if r.Expenses == nil {
		r.Expenses = []core.Expense{}
	}
	return f.write(r)
}

// JSONBudgetFile stores budgets as {"YYYY-MM": {"<category>": amount}}.
type JSONBudgetFile struct{ *JSONFile }

func NewJSONBudgetFile(path string) *JSONBudgetFile {
	return &JSONBudgetFile{NewJSONFile(path)}
}

func (f *JSONBudgetFile) LoadBudgets(ctx context.Context) (core.Budgets, error) {
	b := core.Budgets{}
	if _, err := f.read(&b); err != nil {
		return core.Budgets{}, err
	}
	for month, cats := range b {
		if cats == nil {
			b[month] = map[string]core.Money{}
		}
	}
	return b, nil
}

func (f *JSONBudgetFile) SaveBudgets(ctx context.Context, b core.Budgets) error {
	if b == nil {
		b = core.Budgets{}
	}
	return f.write(b)
}
