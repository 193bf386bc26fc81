// Command passthru drives a J2534 PassThru driver from the command line:
// open the device, connect a channel, run configured ioctls, send a
// payload and print what comes back.
//
// Usage:
//
//	passthru [flags]
//
// Examples:
//
//	# Request VIN over ISO15765 with an OpenPort 2.0
//	passthru -driver "C:\Windows\SysWOW64\op20pt32.dll" -prefix "00 00 07 DF" -send "09 02"
//
//	# Everything from a config file, streaming an Intel HEX image
//	passthru -config passthru.yaml -hex app.hex -capture captures
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/LoveWonYoung/passthru/bridge"
	"github.com/LoveWonYoung/passthru/config"
	"github.com/LoveWonYoung/passthru/driver"
	"github.com/LoveWonYoung/passthru/j2534"
	"github.com/LoveWonYoung/passthru/logrecorder"
	"github.com/LoveWonYoung/passthru/payload"
)

var (
	configFile = flag.String("config", "", "YAML configuration file")
	driverPath = flag.String("driver", "", "J2534 driver DLL")
	protocolID = flag.Uint("protocol", 0, "protocol id (5=CAN, 6=ISO15765)")
	baudRate   = flag.Uint("baud", 0, "baud rate")
	connFlags  = flag.Uint("flags", 0, "connect flags")
	txFlags    = flag.Uint("txflags", 0, "tx flags of sent messages")
	timeoutMs  = flag.Uint("timeout", 0, "read/write timeout in ms")
	listen     = flag.Duration("listen", 0, "how long to read after sending")
	prefix     = flag.String("prefix", "", "hex bytes prepended to every payload")
	send       = flag.String("send", "", "hex payload to send, e.g. \"09 02\"")
	hexFile    = flag.String("hex", "", "Intel HEX image to send in blocks")
	blockSize  = flag.Int("block", 0, "bytes per message when sending -hex")
	captureDir = flag.String("capture", "", "directory for CBOR traffic captures")
	logLevel   = flag.String("log-level", "", "debug, info, warn, error")
	logDir     = flag.String("log-dir", "", "directory for log files")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logrecorder.NewLogger(cfg.LogLevel, cfg.LogDir, "passthru_")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()
	bridge.SetLogger(logger.Named("bridge"))
	driver.SetLogger(logger.Named("driver"))

	msgs, err := buildMessages(cfg, *send, *hexFile)
	if err != nil {
		logger.Fatal("invalid payload", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, bridge.New(), msgs, logger); err != nil {
		logger.Error("passthru failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig merges the config file (if any) with explicitly set flags.
func loadConfig() (config.Config, error) {
	cfg := config.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return cfg, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.DriverPath = *driverPath
		case "protocol":
			cfg.ProtocolID = uint32(*protocolID)
		case "baud":
			cfg.BaudRate = uint32(*baudRate)
		case "flags":
			cfg.ConnectFlags = uint32(*connFlags)
		case "txflags":
			cfg.TxFlags = uint32(*txFlags)
		case "timeout":
			cfg.TimeoutMs = uint32(*timeoutMs)
		case "listen":
			cfg.Listen = *listen
		case "prefix":
			cfg.TxPrefix = *prefix
		case "block":
			cfg.BlockSize = *blockSize
		case "capture":
			cfg.CaptureDir = *captureDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-dir":
			cfg.LogDir = *logDir
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildMessages turns -send and -hex into the batch to write.
func buildMessages(cfg config.Config, sendHex, hexPath string) ([]j2534.Message, error) {
	pfx, err := payload.ParseHex(cfg.TxPrefix)
	if err != nil {
		return nil, err
	}
	var msgs []j2534.Message
	if sendHex != "" {
		data, err := payload.ParseHex(sendHex)
		if err != nil {
			return nil, err
		}
		batch, err := payload.Messages([][]byte{data}, pfx, cfg.TxFlags)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, batch...)
	}
	if hexPath != "" {
		batch, err := payload.FromIntelHex(hexPath, cfg.BlockSize, pfx, cfg.TxFlags)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, batch...)
	}
	return msgs, nil
}

// run performs one open..close cycle. The bridge is always closed, and a
// close failure is reported when nothing else failed.
func run(ctx context.Context, cfg config.Config, b bridge.Bridge, msgs []j2534.Message, log *zap.Logger) (err error) {
	if r := b.Open(cfg.DriverPath); !r.IsOK() {
		return fmt.Errorf("open %s: %w", cfg.DriverPath, r.Err())
	}
	defer func() {
		if r := b.Close(); !r.IsOK() && err == nil {
			err = fmt.Errorf("close: %w", r.Err())
		}
	}()

	if r := b.Connect(cfg.ProtocolID, cfg.ConnectFlags, cfg.BaudRate); !r.IsOK() {
		return fmt.Errorf("connect protocol %d at %d: %w", cfg.ProtocolID, cfg.BaudRate, r.Err())
	}

	for _, io := range cfg.Ioctls {
		in, err := payload.ParseHex(io.Payload)
		if err != nil {
			return err
		}
		if r := b.Ioctl(io.ID, in); !r.IsOK() {
			return fmt.Errorf("ioctl 0x%02X: %w", io.ID, r.Err())
		}
	}

	var rec *logrecorder.Recorder
	if cfg.CaptureDir != "" {
		if rec, err = logrecorder.NewRecorder(cfg.CaptureDir, "capture_"); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		defer rec.Close()
		log.Info("capturing traffic", zap.String("file", rec.Path()))
	}

	if len(msgs) > 0 {
		if r := b.WriteMessages(msgs, cfg.TimeoutMs); !r.IsOK() {
			return fmt.Errorf("write %d messages: %w", len(msgs), r.Err())
		}
		for _, m := range msgs {
			log.Info("TX", zap.String("data", fmt.Sprintf("% 02X", m.Payload)))
		}
		if rec != nil {
			if err := rec.Record(logrecorder.TX, cfg.ProtocolID, msgs); err != nil {
				log.Warn("capture write failed", zap.Error(err))
			}
		}
	}

	return listenLoop(ctx, cfg, b, rec, log)
}

// idlePoll spaces out non-blocking reads (timeout_ms 0) that come back empty.
const idlePoll = 10 * time.Millisecond

func listenLoop(ctx context.Context, cfg config.Config, b bridge.Bridge, rec *logrecorder.Recorder, log *zap.Logger) error {
	deadline := time.Now().Add(cfg.Listen)
	buf := make([]j2534.Message, 0, cfg.ReadBatch)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("interrupted")
				return nil
			}
			return err
		}

		var r j2534.Result
		buf, r = b.ReadMessages(buf, cfg.TimeoutMs)
		if !r.IsOK() {
			return fmt.Errorf("read: %w", r.Err())
		}
		for _, m := range buf {
			log.Info("RX",
				zap.Uint32("timestamp", m.Timestamp),
				zap.Uint32("rx_status", m.Flags),
				zap.String("data", fmt.Sprintf("% 02X", m.Payload)))
		}
		if rec != nil && len(buf) > 0 {
			if err := rec.Record(logrecorder.RX, cfg.ProtocolID, buf); err != nil {
				log.Warn("capture write failed", zap.Error(err))
			}
		}
		if len(buf) == 0 && cfg.TimeoutMs == 0 {
			select {
			case <-ctx.Done():
			case <-time.After(idlePoll):
			}
		}
	}
	return nil
}
