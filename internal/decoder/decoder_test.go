package decoder

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region mock
type mockConn struct {
	grpc.ClientConnInterface

	method string
	req    *structpb.Struct
	reply  *structpb.Struct
	err    error
	// failures is how many leading calls return err before succeeding.
	failures int
	calls    int
}

func (m *mockConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	m.method = method
	m.req = args.(*structpb.Struct)
	m.calls++
	if m.err != nil && (m.failures == 0 || m.calls <= m.failures) {
		return m.err
	}
	proto.Merge(reply.(*structpb.Struct), m.reply)
	return nil
}

func mustStruct(t *testing.T, v map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(v)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	return s
}

// #endregion mock

// #region validate-tests
func TestValidate(t *testing.T) {
	m := ScoreMatrix{{1, 2}, {3, 4}, {5, 6}}
	if err := Validate(m, 3, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(m, 2, 2); err != nil {
		t.Fatalf("extra rows must be accepted: %v", err)
	}
	if err := Validate(m, 4, 2); !errors.Is(err, ErrShortScores) {
		t.Fatalf("expected ErrShortScores, got %v", err)
	}
	if err := Validate(ScoreMatrix{{1}}, 1, 2); !errors.Is(err, ErrRowWidth) {
		t.Fatalf("expected ErrRowWidth, got %v", err)
	}
}

// #endregion validate-tests

// #region affine-tests
func TestAffine_Deterministic(t *testing.T) {
	z := []float64{0.3, -0.2, 1.1}
	a := NewAffine(3, 5, 4, 17, 0.5)
	b := NewAffine(3, 5, 4, 17, 0.5)

	ma, err := a.Decode(context.Background(), z, 4)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	mb, _ := b.Decode(context.Background(), z, 4)
	if err := Validate(ma, 4, 5); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for i := range ma {
		for j := range ma[i] {
			if ma[i][j] != mb[i][j] {
				t.Fatalf("score (%d,%d) differs", i, j)
			}
		}
	}
}

func TestAffine_ShortAndBadLatent(t *testing.T) {
	a := NewAffine(2, 3, 2, 1, 1)
	m, err := a.Decode(context.Background(), []float64{0, 0}, 5)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m))
	}
	if err := Validate(m, 5, 3); !errors.Is(err, ErrShortScores) {
		t.Fatalf("expected ErrShortScores, got %v", err)
	}
	if _, err := a.Decode(context.Background(), []float64{0}, 2); !errors.Is(err, ErrLatentDim) {
		t.Fatalf("expected ErrLatentDim, got %v", err)
	}
}

func TestAffine_ZeroLatentGivesBias(t *testing.T) {
	a := NewAffine(2, 3, 1, 5, 1)
	m, _ := a.Decode(context.Background(), []float64{0, 0}, 1)
	for r := 0; r < 3; r++ {
		if m[0][r] != a.bias[0][r] {
			t.Fatalf("rule %d: expected bias %v, got %v", r, a.bias[0][r], m[0][r])
		}
	}
}

func TestAffine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewAffine(1, 1, 1, 1, 1)
	if _, err := a.Decode(ctx, []float64{0}, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAffineEncoder(t *testing.T) {
	e := NewAffineEncoder(2, 3, 4, 9, 0.1)
	x := [][]float64{{1, 0, 0}, {0, 0, 1}}
	mu, sigma, err := e.Encode(context.Background(), x)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(mu) != 4 || len(sigma) != 4 {
		t.Fatalf("expected zDim 4, got %d/%d", len(mu), len(sigma))
	}
	if mu[0] != e.wMu[0][0]+e.wMu[0][5] {
		t.Fatalf("unexpected mu[0] %v", mu[0])
	}
	if _, _, err := e.Encode(context.Background(), x[:1]); !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected ErrInputShape, got %v", err)
	}
	if _, _, err := e.Encode(context.Background(), [][]float64{{1}, {1}}); !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected ErrInputShape, got %v", err)
	}
}

// #endregion affine-tests

// #region remote-tests
func TestNewRemote(t *testing.T) {
	r, err := NewRemote("localhost:0")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	defer r.Close()
}

func TestRemoteDecode_Success(t *testing.T) {
	mock := &mockConn{reply: mustStruct(t, map[string]any{
		"scores": []any{
			[]any{0.1, 0.2},
			[]any{1.5, -3.0},
		},
	})}
	r := NewRemoteWithConn(mock)

	m, err := r.Decode(context.Background(), []float64{0.5, 0.25}, 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mock.method != DecodeMethod {
		t.Errorf("expected method %s, got %s", DecodeMethod, mock.method)
	}
	if got := mock.req.Fields["max_length"].GetNumberValue(); got != 2 {
		t.Errorf("expected max_length 2, got %v", got)
	}
	if got := mock.req.Fields["z"].GetListValue().GetValues()[1].GetNumberValue(); got != 0.25 {
		t.Errorf("expected z[1]=0.25, got %v", got)
	}
	if len(m) != 2 || m[1][0] != 1.5 || m[1][1] != -3.0 {
		t.Fatalf("unexpected matrix %v", m)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close without owned conn: %v", err)
	}
}

func TestRemoteDecode_RPCError(t *testing.T) {
	r := NewRemoteWithConn(&mockConn{err: errors.New("unavailable")})
	if _, err := r.Decode(context.Background(), []float64{0}, 1); err == nil {
		t.Fatal("expected error")
	}
}

func TestRemoteDecode_RetriesTransient(t *testing.T) {
	mock := &mockConn{
		err:      status.Error(codes.Unavailable, "warming up"),
		failures: 2,
		reply:    mustStruct(t, map[string]any{"scores": []any{[]any{1.0}}}),
	}
	m, err := NewRemoteWithConn(mock).Decode(context.Background(), []float64{0}, 1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if mock.calls != 3 {
		t.Errorf("expected 3 calls, got %d", mock.calls)
	}
	if len(m) != 1 || m[0][0] != 1.0 {
		t.Fatalf("unexpected matrix %v", m)
	}
}

func TestRemoteDecode_RetryBudget(t *testing.T) {
	mock := &mockConn{err: status.Error(codes.Unavailable, "down")}
	_, err := NewRemoteWithConn(mock).Decode(context.Background(), []float64{0}, 1)
	if status.Code(errors.Unwrap(err)) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if mock.calls != maxRetries+1 {
		t.Errorf("expected %d calls, got %d", maxRetries+1, mock.calls)
	}
}

func TestRemoteDecode_NoRetryOnPermanent(t *testing.T) {
	mock := &mockConn{err: status.Error(codes.InvalidArgument, "bad z")}
	if _, err := NewRemoteWithConn(mock).Decode(context.Background(), []float64{0}, 1); err == nil {
		t.Fatal("expected error")
	}
	if mock.calls != 1 {
		t.Errorf("expected 1 call, got %d", mock.calls)
	}
}

func TestRemoteDecode_BadRow(t *testing.T) {
	mock := &mockConn{reply: mustStruct(t, map[string]any{
		"scores": []any{[]any{"nope"}},
	})}
	if _, err := NewRemoteWithConn(mock).Decode(context.Background(), []float64{0}, 1); err == nil {
		t.Fatal("expected error for non-numeric entry")
	}
	mock = &mockConn{reply: mustStruct(t, map[string]any{
		"scores": []any{1.0},
	})}
	if _, err := NewRemoteWithConn(mock).Decode(context.Background(), []float64{0}, 1); err == nil {
		t.Fatal("expected error for non-list row")
	}
}

// #endregion remote-tests
