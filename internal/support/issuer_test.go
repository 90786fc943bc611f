package support

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remote-support-backend/internal/code"
	"remote-support-backend/internal/model"
)

func TestIssueCode_Validation(t *testing.T) {
	s := newTestStore(t)
	issuer := NewIssuer(s, NewActivityLog(s, nil), 30*time.Minute)
	ctx := context.Background()

	testCases := []struct {
		name string
		info CustomerInfo
	}{
		{name: "missing name", info: CustomerInfo{}},
		{name: "blank name", info: CustomerInfo{Name: "   "}},
		{name: "malformed email", info: CustomerInfo{Name: "Jane Doe", Email: "not-an-email"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := issuer.IssueCode(ctx, tc.info)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestIssueCode(t *testing.T) {
	s := newTestStore(t)
	issuer := NewIssuer(s, NewActivityLog(s, nil), 30*time.Minute)

	sc, err := issuer.IssueCode(context.Background(), CustomerInfo{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Phone: "555-0100",
		Notes: "printer trouble",
	})
	require.NoError(t, err)

	assert.NoError(t, code.Validate(sc.Code))
	assert.Equal(t, model.CodeStatusIssued, sc.Status)
	assert.Equal(t, "Jane Doe", sc.CustomerName)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), sc.ExpiresAt, 5*time.Second)

	ev := lastEventOfType(t, s, model.ActivityCodeGenerated)
	require.NotNil(t, ev, "issuance must be logged")
	assert.Equal(t, sc.Code, ev.Code)
	assert.Contains(t, ev.Title, "Jane Doe")
}

func TestIssueCode_ConcurrentUniqueness(t *testing.T) {
	s := newTestStore(t)
	issuer := NewIssuer(s, NewActivityLog(s, nil), 30*time.Minute)

	const issuances = 16
	codes := make([]string, issuances)
	errs := make([]error, issuances)
	var wg sync.WaitGroup
	for i := 0; i < issuances; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sc, err := issuer.IssueCode(context.Background(), CustomerInfo{Name: "Jane Doe"})
			if err == nil {
				codes[n] = sc.Code
			}
			errs[n] = err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, issuances)
	for i := 0; i < issuances; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[codes[i]], "active code %s issued twice", codes[i])
		seen[codes[i]] = true
	}
}
