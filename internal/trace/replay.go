package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/yolodolo42/evmcli/internal/metrics"
	"github.com/yolodolo42/evmcli/internal/ui"
)

// Tracer re-executes a transaction or call on the node and returns the raw
// trace. Implementations must not send anything that changes chain state.
type Tracer interface {
	TraceTransaction(ctx context.Context, hash common.Hash, params Params) (json.RawMessage, error)
	TraceCall(ctx context.Context, call CallRequest, params Params) (json.RawMessage, error)
}

// CallRequest is the message replayed by debug_traceCall.
type CallRequest struct {
	From  common.Address
	To    common.Address
	Data  []byte
	Value *big.Int
}

// MarshalJSON encodes the request as node transaction arguments.
func (r CallRequest) MarshalJSON() ([]byte, error) {
	args := map[string]any{
		"from": r.From,
		"to":   r.To,
		"data": hexutil.Bytes(r.Data),
	}
	if r.Value != nil && r.Value.Sign() > 0 {
		args["value"] = (*hexutil.Big)(r.Value)
	}
	return json.Marshal(args)
}

// Result is a completed replay.
type Result struct {
	ID     string
	Target string
	Config Config
	Raw    json.RawMessage
}

// Transaction replays the mined transaction hash with cfg.
func Transaction(ctx context.Context, t Tracer, hash common.Hash, cfg Config) (*Result, error) {
	cfg = cfg.clone()
	metrics.TracesTotal.WithLabelValues(label(cfg.Kind)).Inc()
	raw, err := t.TraceTransaction(ctx, hash, cfg.Params())
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s", hash.Hex())
	}
	return &Result{ID: uuid.NewString(), Target: hash.Hex(), Config: cfg, Raw: raw}, nil
}

// Call replays req with the call tracer defaults. target names the call in
// the result.
func Call(ctx context.Context, t Tracer, req CallRequest, target string) (*Result, error) {
	cfg := DefaultConfig(CallTracer)
	metrics.TracesTotal.WithLabelValues(label(cfg.Kind)).Inc()
	raw, err := t.TraceCall(ctx, req, cfg.Params())
	if err != nil {
		return nil, errors.Wrapf(err, "trace call %s", target)
	}
	return &Result{ID: uuid.NewString(), Target: target, Config: cfg, Raw: raw}, nil
}

func label(k Kind) string {
	if n := k.Name(); n != "" {
		return n
	}
	return "structLogger"
}

// Pretty returns the raw trace indented for display.
func (r *Result) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return string(r.Raw)
	}
	return buf.String()
}

// Frame is one call frame of the call tracer output.
type Frame struct {
	Type         string            `json:"type"`
	From         common.Address    `json:"from"`
	To           *common.Address   `json:"to,omitempty"`
	Value        *hexutil.Big      `json:"value,omitempty"`
	Gas          hexutil.Uint64    `json:"gas"`
	GasUsed      hexutil.Uint64    `json:"gasUsed"`
	Input        hexutil.Bytes     `json:"input"`
	Output       hexutil.Bytes     `json:"output,omitempty"`
	Error        string            `json:"error,omitempty"`
	RevertReason string            `json:"revertReason,omitempty"`
	Calls        []Frame           `json:"calls,omitempty"`
	Logs         []json.RawMessage `json:"logs,omitempty"`
}

type structLogs struct {
	Gas         uint64            `json:"gas"`
	Failed      bool              `json:"failed"`
	ReturnValue string            `json:"returnValue"`
	StructLogs  []json.RawMessage `json:"structLogs"`
}

// Summary renders a short human reading of the trace: the call tree for
// the call tracer, counts for the others. Unparseable output falls back to
// its size.
func (r *Result) Summary() string {
	switch r.Config.Kind {
	case CallTracer:
		var root Frame
		if err := json.Unmarshal(r.Raw, &root); err == nil && root.Type != "" {
			var b strings.Builder
			writeFrame(&b, root, "", true, true)
			return strings.TrimRight(b.String(), "\n")
		}
	case PrestateTracer:
		var diff struct {
			Pre  map[string]json.RawMessage `json:"pre"`
			Post map[string]json.RawMessage `json:"post"`
		}
		if err := json.Unmarshal(r.Raw, &diff); err == nil && (diff.Pre != nil || diff.Post != nil) {
			return fmt.Sprintf("%d accounts before, %d after", len(diff.Pre), len(diff.Post))
		}
		var accounts map[string]json.RawMessage
		if err := json.Unmarshal(r.Raw, &accounts); err == nil {
			return fmt.Sprintf("%d accounts touched", len(accounts))
		}
	case OplogTracer:
		var sl structLogs
		if err := json.Unmarshal(r.Raw, &sl); err == nil {
			status := "ok"
			if sl.Failed {
				status = "failed"
			}
			return fmt.Sprintf("%d steps, gas %d, %s", len(sl.StructLogs), sl.Gas, status)
		}
	case FlatCallTracer:
		var frames []json.RawMessage
		if err := json.Unmarshal(r.Raw, &frames); err == nil {
			return fmt.Sprintf("%d call frames", len(frames))
		}
	}
	return fmt.Sprintf("%d bytes of trace output", len(r.Raw))
}

func writeFrame(b *strings.Builder, f Frame, indent string, root, last bool) {
	branch := ""
	if !root {
		branch = ui.SymbolTreeBranch + " "
		if last {
			branch = ui.SymbolTree + " "
		}
	}
	to := "(create)"
	if f.To != nil {
		to = short(f.To.Hex())
	}
	fmt.Fprintf(b, "%s%s%s %s→%s gas %d", indent, branch, f.Type, short(f.From.Hex()), to, uint64(f.GasUsed))
	if len(f.Input) >= 4 {
		fmt.Fprintf(b, " %s", hexutil.Encode(f.Input[:4]))
	}
	if f.Error != "" {
		fmt.Fprintf(b, " [%s", f.Error)
		if f.RevertReason != "" {
			fmt.Fprintf(b, ": %s", f.RevertReason)
		}
		b.WriteString("]")
	}
	if len(f.Logs) > 0 {
		fmt.Fprintf(b, " logs %d", len(f.Logs))
	}
	b.WriteByte('\n')

	childIndent := indent
	if !root {
		if last {
			childIndent += "  "
		} else {
			childIndent += ui.SymbolTreePipe + " "
		}
	}
	for i, c := range f.Calls {
		writeFrame(b, c, childIndent, false, i == len(f.Calls)-1)
	}
}

func short(hex string) string {
	if len(hex) <= 10 {
		return hex
	}
	return hex[:10]
}
