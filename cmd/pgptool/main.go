// Command pgptool exercises the library from the shell.
//
// Usage:
//
//	pgptool [flags] check-userid <user id>
//	pgptool [flags] roundtrip <user id> < message.txt
//
// roundtrip reads configuration from OPENPGP_* environment variables and
// from any files named with --env-file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	openpgp "github.com/vaultsandbox/openpgp-go"
	"github.com/vaultsandbox/openpgp-go/util"
)

// Config holds the I/O streams used by the command.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() *Config {
	return &Config{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// UserIDOutput is the result of check-userid.
type UserIDOutput struct {
	Value   string `json:"value"`
	IsEmail bool   `json:"isEmail"`
	IsUser  bool   `json:"isUserId"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

// RoundtripOutput is the result of roundtrip.
type RoundtripOutput struct {
	Fingerprint   string `json:"fingerprint"`
	PrimaryUserID string `json:"primaryUserId"`
	EncryptedSize int    `json:"encryptedSize"`
	ZeroCopy      bool   `json:"zeroCopy"`
	Text          string `json:"text"`
}

// flags holds the parsed command line flags.
type flags struct {
	envFiles []string
	zeroCopy bool
	verbose  bool
	changed  func(name string) bool
}

func run(args []string, cfg *Config) error {
	var f flags
	flagSet := pflag.NewFlagSet("pgptool", pflag.ContinueOnError)
	flagSet.SetOutput(orDiscard(cfg.Stderr))
	flagSet.StringSliceVar(&f.envFiles, "env-file", nil, "dotenv file to read configuration from (repeatable)")
	flagSet.BoolVar(&f.zeroCopy, "zero-copy", false, "hand request buffers to the worker without copying")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log worker activity to stderr")
	f.changed = flagSet.Changed

	if len(args) > 0 {
		args = args[1:]
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: pgptool [flags] <check-userid|roundtrip> <user id>")
	}

	switch rest[0] {
	case "check-userid":
		return runCheckUserID(rest[1], cfg)
	case "roundtrip":
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return runRoundtrip(ctx, rest[1], &f, cfg)
	default:
		return fmt.Errorf("unknown command: %s", rest[0])
	}
}

func runCheckUserID(value string, cfg *Config) error {
	out := UserIDOutput{
		Value:   value,
		IsEmail: util.IsEmailAddress(value),
		IsUser:  util.IsUserID(value),
	}
	if id, err := util.ParseUserID(value); err == nil {
		out.Name = id.Name
		out.Email = id.Email
	}

	if err := json.NewEncoder(cfg.Stdout).Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func runRoundtrip(ctx context.Context, userID string, f *flags, cfg *Config) error {
	input, err := io.ReadAll(cfg.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	text, err := util.DecodeUTF8(input)
	if err != nil {
		return fmt.Errorf("decode input: %w", err)
	}

	var opts []openpgp.Option
	if f.changed("zero-copy") {
		opts = append(opts, openpgp.WithZeroCopy(f.zeroCopy))
	}
	if f.verbose {
		handler := slog.NewTextHandler(orDiscard(cfg.Stderr), &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, openpgp.WithLogger(slog.New(handler)))
	}

	libCfg, err := openpgp.LoadConfig(f.envFiles, opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	key, err := openpgp.GenerateKey(userID)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	worker := openpgp.NewWorker(libCfg)
	defer worker.Close()

	encrypted, err := worker.Encrypt(ctx, openpgp.NewTextMessage(text), key, key)
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	blob, err := encrypted.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	var parsed openpgp.EncryptedMessage
	if err := parsed.UnmarshalBinary(blob); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	msg, err := worker.Decrypt(ctx, &parsed, key, key)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	decrypted, err := msg.Text()
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	out := RoundtripOutput{
		Fingerprint:   key.Fingerprint(),
		PrimaryUserID: key.PrimaryUserID().String(),
		EncryptedSize: len(blob),
		ZeroCopy:      libCfg.ZeroCopy(),
		Text:          decrypted,
	}
	if err := json.NewEncoder(cfg.Stdout).Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}
