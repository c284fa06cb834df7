package memory_test

import (
	"testing"

	"github.com/attestra/veritor/pkg/adapters/memory"
	"github.com/attestra/veritor/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.CheckpointStoreContract(t, memory.NewStore())
}
