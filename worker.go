package openpgp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vaultsandbox/openpgp-go/util"
)

const (
	opEncrypt = "encrypt"
	opDecrypt = "decrypt"
)

// EncryptRequest is the payload sent to the worker by Worker.Encrypt.
type EncryptRequest struct {
	Message   *Message
	Recipient *Key
	Signer    *Key
}

// DecryptRequest is the payload sent to the worker by Worker.Decrypt.
type DecryptRequest struct {
	Encrypted *EncryptedMessage
	Recipient *Key
	Signer    *Key
}

type workerRequest struct {
	ctx     context.Context
	op      string
	payload any
	reply   chan workerResult
}

type workerResult struct {
	value any
	err   error
}

// Worker runs encryption and decryption on a dedicated goroutine.
//
// When zero-copy is enabled in the Config, the byte buffers of a request are
// handed to the worker as-is and the caller must not modify them until the
// call returns. A call that transferred its buffers does not return on
// cancellation until the worker has let go of them. Otherwise every request
// is copied before it is queued, so the caller may reuse its buffers
// immediately.
type Worker struct {
	cfg    *Config
	logger *slog.Logger

	requests chan *workerRequest
	done     chan struct{}
	stopped  chan struct{}

	closeOnce sync.Once
}

// NewWorker starts a worker. A nil cfg uses the defaults.
func NewWorker(cfg *Config) *Worker {
	if cfg == nil {
		cfg = NewConfig()
	}
	w := &Worker{
		cfg:      cfg,
		logger:   cfg.Logger().With("component", "worker"),
		requests: make(chan *workerRequest, cfg.WorkerQueueSize()),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Encrypt encrypts msg on the worker goroutine. See Encrypt.
func (w *Worker) Encrypt(ctx context.Context, msg *Message, recipient, signer *Key) (*EncryptedMessage, error) {
	if msg == nil {
		return nil, &InvalidArgumentError{Param: "message", Message: "message is required"}
	}
	req := &EncryptRequest{Message: msg, Recipient: recipient, Signer: signer}
	transferred := w.handOff(opEncrypt, req)
	if !transferred {
		req.Message = msg.clone()
	}

	v, err := w.do(ctx, opEncrypt, req, transferred)
	if err != nil {
		return nil, err
	}
	return v.(*EncryptedMessage), nil
}

// Decrypt decrypts em on the worker goroutine. See Decrypt.
func (w *Worker) Decrypt(ctx context.Context, em *EncryptedMessage, recipient, signer *Key) (*Message, error) {
	if em == nil {
		return nil, &InvalidArgumentError{Param: "message", Message: "message is required"}
	}
	req := &DecryptRequest{Encrypted: em, Recipient: recipient, Signer: signer}
	transferred := w.handOff(opDecrypt, req)
	if !transferred {
		req.Encrypted = em.clone()
	}

	v, err := w.do(ctx, opDecrypt, req, transferred)
	if err != nil {
		return nil, err
	}
	return v.(*Message), nil
}

// Close stops the worker and waits for it to exit. Requests still queued are
// abandoned and their callers receive ErrWorkerClosed. Close is idempotent.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	<-w.stopped
	return nil
}

// handOff reports whether req may be sent without copying its buffers.
func (w *Worker) handOff(op string, req any) bool {
	transfer := util.GetTransferables(w.cfg, req)
	if transfer == nil {
		w.logger.Debug("copying request", "op", op)
		return false
	}
	size := 0
	for _, buf := range transfer {
		size += len(buf)
	}
	w.logger.Debug("transferring request buffers", "op", op, "buffers", len(transfer), "bytes", size)
	return true
}

// do queues a request and waits for its result. When transferred is set the
// worker may be reading the caller's buffers, so a canceled call still waits
// for the reply before returning ctx.Err().
func (w *Worker) do(ctx context.Context, op string, payload any, transferred bool) (any, error) {
	select {
	case <-w.done:
		return nil, ErrWorkerClosed
	default:
	}

	req := &workerRequest{ctx: ctx, op: op, payload: payload, reply: make(chan workerResult, 1)}
	select {
	case w.requests <- req:
	case <-w.done:
		return nil, ErrWorkerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.value, res.err
	case <-w.stopped:
		return w.finish(req)
	case <-ctx.Done():
	}

	if transferred {
		w.logger.Debug("waiting for transferred request", "op", op)
		select {
		case <-req.reply:
		case <-w.stopped:
		}
	}
	return nil, ctx.Err()
}

// finish collects a reply the worker may have sent just before exiting.
func (w *Worker) finish(req *workerRequest) (any, error) {
	select {
	case res := <-req.reply:
		return res.value, res.err
	default:
		return nil, ErrWorkerClosed
	}
}

func (w *Worker) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			w.logger.Debug("worker stopped")
			return
		case req := <-w.requests:
			req.reply <- w.handle(req)
		}
	}
}

func (w *Worker) handle(req *workerRequest) workerResult {
	var res workerResult
	if err := req.ctx.Err(); err != nil {
		w.logger.Debug("skipping canceled request", "op", req.op)
		res.err = err
		return res
	}
	switch p := req.payload.(type) {
	case *EncryptRequest:
		res.value, res.err = Encrypt(p.Message, p.Recipient, p.Signer)
	case *DecryptRequest:
		res.value, res.err = Decrypt(p.Encrypted, p.Recipient, p.Signer)
	}
	if res.err != nil {
		w.logger.Warn("request failed", "op", req.op, "error", res.err)
	}
	return res
}
