// Package acquire reads live electrode samples from an amplifier's serial
// interface. Lines arrive as comma-separated name,value pairs and are parsed
// into sample batches for the rendering chain.
package acquire

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"go.bug.st/serial"

	"github.com/neuroviz-data/scalpview/internal/headmap"
)

// SamplePort wraps a serial connection to an EEG amplifier streaming
// line-framed sample batches.
type SamplePort struct {
	serial.Port
	batches  chan []headmap.SensorSample
	commands chan string
}

// NewSamplePort opens the amplifier port at 115200 8N1.
func NewSamplePort(portName string) (*SamplePort, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: 1,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	batches := make(chan []headmap.SensorSample)
	commands := make(chan string)
	return &SamplePort{port, batches, commands}, nil
}

// Batches returns a channel of parsed sample batches, one per line read from
// the amplifier.
func (p *SamplePort) Batches() <-chan []headmap.SensorSample {
	return p.batches
}

// Close closes the serial port.
func (p *SamplePort) Close() error {
	if err := p.Port.Close(); err != nil {
		return err
	}
	return nil
}

// SendCommand queues a control word (e.g. "start", "stop") for the amplifier.
func (p *SamplePort) SendCommand(command string) {
	p.commands <- command
}

func (p *SamplePort) writeCommand(command string) error {
	_, err := p.Port.Write([]byte(command + "\n"))
	if err != nil {
		log.Printf("[acquire] error writing to port: %v", err)
		return err
	}
	return nil
}

// Monitor reads from the serial port and sends parsed batches to the batches
// channel. Malformed lines are logged and skipped.
func (p *SamplePort) Monitor(ctx context.Context) error {
	defer p.Close()
	scan := bufio.NewScanner(p.Port)

	for {
		select {
		case <-ctx.Done():
			return nil
		case command := <-p.commands:
			if err := p.writeCommand(command); err != nil {
				log.Printf("[acquire] error writing command to port: %v", err)
			}
		default:
			if !scan.Scan() {
				return scan.Err()
			}
			line := scan.Text()

			batch, err := ParseLine(line)
			if err != nil {
				log.Printf("[acquire] skipping line: %v", err)
				continue
			}
			if len(batch) == 0 {
				continue
			}

			select {
			case p.batches <- batch:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// ParseLine parses one amplifier line of the form
// "name,value[,name,value...]" into sensor samples. Values are microvolts.
func ParseLine(line string) ([]headmap.SensorSample, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	fields := strings.Split(line, ",")
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd field count %d in line %q", len(fields), line)
	}

	samples := make([]headmap.SensorSample, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		name := strings.TrimSpace(fields[i])
		if name == "" {
			return nil, fmt.Errorf("empty channel name at field %d in line %q", i, line)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value for channel %s: %w", name, err)
		}
		samples = append(samples, headmap.SensorSample{Name: name, Value: value})
	}
	return samples, nil
}
