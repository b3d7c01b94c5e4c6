package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		gt.NoError(t, errutil.Handle(context.Background(), nil, "noop"))
	})

	t.Run("returns the original error", func(t *testing.T) {
		base := goerr.New("boom", goerr.V("key", "value"))
		err := errutil.Handle(context.Background(), base, "failed")
		gt.Bool(t, errors.Is(err, base)).True()
	})
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad input"), http.StatusBadRequest)
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("bad input")
}
