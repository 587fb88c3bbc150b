package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

func testBatch(id string, created time.Time) schema.Batch {
	return schema.Batch{
		ID:        id,
		CreatedAt: created,
		Summary:   schema.Summary{Total: 1, Invalid: 1, FieldFailures: map[string]int{schema.FieldAge: 1}},
		Records: []schema.ValidatedRecord{{
			RawRecord: schema.RawRecord{Name: "Ana Silva", Age: "abc"},
			Status:    schema.StatusInvalid,
			Reasons:   []string{"Idade inválida: abc - Precisa ser um número inteiro"},
		}},
	}
}

func TestMemStore_PutGetDelete(t *testing.T) {
	ms := NewMemStore(nil, nil, zerolog.Nop())

	if err := ms.Put(testBatch("b1", time.Now())); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := ms.Get("b1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Summary.Invalid != 1 || len(got.Records) != 1 {
		t.Errorf("Unexpected batch: %+v", got)
	}

	if _, err := ms.Get("missing"); err != ErrBatchNotFound {
		t.Errorf("Expected ErrBatchNotFound, got %v", err)
	}

	if err := ms.Delete("b1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := ms.Get("b1"); err != ErrBatchNotFound {
		t.Errorf("Expected ErrBatchNotFound after delete, got %v", err)
	}
	if err := ms.Delete("b1"); err != ErrBatchNotFound {
		t.Errorf("Expected ErrBatchNotFound on second delete, got %v", err)
	}
}

func TestMemStore_GetReturnsCopy(t *testing.T) {
	ms := NewMemStore(nil, nil, zerolog.Nop())
	ms.Put(testBatch("b1", time.Now()))

	got, _ := ms.Get("b1")
	got.Records[0].Reasons[0] = "changed"
	got.Summary.FieldFailures[schema.FieldAge] = 99

	again, _ := ms.Get("b1")
	if again.Records[0].Reasons[0] == "changed" || again.Summary.FieldFailures[schema.FieldAge] != 1 {
		t.Errorf("Stored batch was mutated through a returned copy: %+v", again)
	}
}

func TestMemStore_ListOrder(t *testing.T) {
	ms := NewMemStore(nil, nil, zerolog.Nop())
	now := time.Now()
	ms.Put(testBatch("late", now.Add(time.Minute)))
	ms.Put(testBatch("early", now))

	list, _ := ms.List()
	if len(list) != 2 || list[0] != "early" || list[1] != "late" {
		t.Errorf("Expected [early late], got %v", list)
	}
}

func TestPersistence(t *testing.T) {
	tmpDir := t.TempDir()

	p, err := NewPersistence(tmpDir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}

	if err := p.SaveBatch(testBatch("b1", time.Now())); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "b1.json")); os.IsNotExist(err) {
		t.Fatal("Batch file was not created")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "b1.json.tmp")); !os.IsNotExist(err) {
		t.Error("Temporary file was left behind")
	}

	// A corrupt file is skipped, not fatal.
	os.WriteFile(filepath.Join(tmpDir, "broken.json"), []byte("{"), 0644)

	all, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected 1 batch, got %d", len(all))
	}
	if all["b1"].Records[0].Name != "Ana Silva" {
		t.Errorf("Loaded data mismatch: %+v", all["b1"])
	}

	if err := p.RemoveBatch("b1"); err != nil {
		t.Fatalf("RemoveBatch failed: %v", err)
	}
	if err := p.RemoveBatch("b1"); err != nil {
		t.Errorf("RemoveBatch on a missing file should succeed, got %v", err)
	}
}

func TestPersistence_RejectsPathIDs(t *testing.T) {
	p, _ := NewPersistence(t.TempDir(), zerolog.Nop())
	if err := p.SaveBatch(testBatch("../escape", time.Now())); err == nil {
		t.Error("Expected an error for an ID containing a path separator")
	}
	if err := p.SaveBatch(testBatch("", time.Now())); err == nil {
		t.Error("Expected an error for an empty ID")
	}
}

func TestMemStore_Persistence(t *testing.T) {
	p, _ := NewPersistence(t.TempDir(), zerolog.Nop())
	ms := NewMemStore(nil, p, zerolog.Nop())

	ms.Put(testBatch("b1", time.Now()))
	ms.Wait() // Wait for background persistence

	all, _ := p.LoadAll()
	ms2 := NewMemStore(all, p, zerolog.Nop())

	got, err := ms2.Get("b1")
	if err != nil {
		t.Fatalf("Get on new store failed: %v", err)
	}
	if got.Records[0].Reasons[0] != "Idade inválida: abc - Precisa ser um número inteiro" {
		t.Errorf("Unexpected reasons: %v", got.Records[0].Reasons)
	}

	ms2.Delete("b1")
	ms2.Wait()
	all, _ = p.LoadAll()
	if len(all) != 0 {
		t.Errorf("Expected batch file to be removed, found %d", len(all))
	}
}

func TestMemStore_DeleteAfterPutLeavesNoFile(t *testing.T) {
	p, _ := NewPersistence(t.TempDir(), zerolog.Nop())
	ms := NewMemStore(nil, p, zerolog.Nop())

	for i := 0; i < 500; i++ {
		id := fmt.Sprintf("b-%d", i)
		if err := ms.Put(testBatch(id, time.Now())); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := ms.Delete(id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
	ms.Wait()

	all, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected no batch files after delete, found %d", len(all))
	}
}

func TestMemStore_LastWriteWins(t *testing.T) {
	p, _ := NewPersistence(t.TempDir(), zerolog.Nop())
	ms := NewMemStore(nil, p, zerolog.Nop())

	for i := 0; i < 200; i++ {
		ms.Put(testBatch("b1", time.Now()))
		ms.Delete("b1")
	}
	last := testBatch("b1", time.Now())
	last.Source = "final.csv"
	ms.Put(last)
	ms.Wait()

	all, _ := p.LoadAll()
	got, ok := all["b1"]
	if !ok {
		t.Fatalf("Expected b1 on disk after the final Put")
	}
	if got.Source != "final.csv" {
		t.Errorf("Expected the last Put on disk, got source %q", got.Source)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultados.txt")
	if err := WriteFileAtomic(path, []byte("one\n")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two\n")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "two\n" {
		t.Errorf("Expected overwritten content, got %q", got)
	}
}

func TestMemStore_Concurrent(t *testing.T) {
	ms := NewMemStore(nil, nil, zerolog.Nop())
	const (
		numGoroutines = 10
		numOps        = 50
	)
	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*numOps)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				bid := fmt.Sprintf("b-%d-%d", id, j)
				ms.Put(testBatch(bid, time.Now()))
				if _, err := ms.Get(bid); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent error: %v", err)
	}
	list, _ := ms.List()
	if len(list) != numGoroutines*numOps {
		t.Errorf("Expected %d batches, got %d", numGoroutines*numOps, len(list))
	}
}
