package decoder

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// DecodeMethod is the full gRPC method name served by the model process.
const DecodeMethod = "/grammarvae.v1.DecoderService/Decode"

const maxRetries = 2 // max 2 retries = 3 total attempts

// #region remote-struct
// Remote calls a decoder hosted in another process. Requests and responses
// are google.protobuf.Struct messages:
//
//	request:  {"z": [..], "max_length": n}
//	response: {"scores": [[..], ..]}
type Remote struct {
	conn   *grpc.ClientConn
	client grpc.ClientConnInterface
}

// #endregion remote-struct

// #region constructor
// NewRemote connects to the decoder service at addr.
func NewRemote(addr string) (*Remote, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Remote{conn: conn, client: conn}, nil
}

// NewRemoteWithConn wraps an existing connection. Used for testing without a
// real server.
func NewRemoteWithConn(cc grpc.ClientConnInterface) *Remote {
	return &Remote{client: cc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection if Remote owns one.
func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// #endregion close

// #region decode
// Decode sends z to the remote decoder and converts the reply to a ScoreMatrix.
func (r *Remote) Decode(ctx context.Context, z []float64, maxLength int) (ScoreMatrix, error) {
	zs := make([]any, len(z))
	for i, v := range z {
		zs[i] = v
	}
	req, err := structpb.NewStruct(map[string]any{
		"z":          zs,
		"max_length": maxLength,
	})
	if err != nil {
		return nil, fmt.Errorf("build decode request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := r.invoke(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("decode rpc: %w", err)
	}

	rows := resp.GetFields()["scores"].GetListValue().GetValues()
	out := make(ScoreMatrix, len(rows))
	for t, row := range rows {
		list := row.GetListValue()
		if list == nil {
			return nil, fmt.Errorf("decode rpc: row %d is not a list", t)
		}
		vals := list.GetValues()
		out[t] = make([]float64, len(vals))
		for i, v := range vals {
			if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
				return nil, fmt.Errorf("decode rpc: row %d entry %d is not a number", t, i)
			}
			out[t][i] = v.GetNumberValue()
		}
	}
	return out, nil
}

// #endregion decode

// #region retry
// invoke retries calls that failed with a transient status. Any other error,
// or a cancelled context, ends the loop.
func (r *Remote) invoke(ctx context.Context, req, resp *structpb.Struct) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp.Reset()
		err = r.client.Invoke(ctx, DecodeMethod, req, resp)
		if err == nil || !transient(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func transient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
		return true
	}
	return false
}

// #endregion retry
