package firestore_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/quill/pkg/infra/firestore"
)

func TestDocID(t *testing.T) {
	gt.Equal(t, firestore.DocID("quill"), "quill")
	gt.Equal(t, firestore.DocID("AC/DC"), "AC%2FDC")
	gt.V(t, firestore.DocID("..")).NotEqual("..")
	gt.V(t, firestore.DocID(".")).NotEqual(".")
}
