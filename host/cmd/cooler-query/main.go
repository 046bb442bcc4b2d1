// Command cooler-query polls a tesla-cooler over its serial query link.
//
//	cooler-query -device /dev/ttyUSB0 info
//	cooler-query -config cooler.yaml watch
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/Tesla-Cooler/tesla-cooler-software/host/config"
	"github.com/Tesla-Cooler/tesla-cooler-software/host/serial"
	"github.com/Tesla-Cooler/tesla-cooler-software/query"
)

var (
	configPath = flag.String("config", "", "Path to YAML config (optional)")
	device     = flag.String("device", "", "Serial device, overrides config")
	interval   = flag.Duration("interval", 0, "Poll interval for watch, overrides config")
)

func main() {
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("cooler-query: %v", err)
	}

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}

	port, err := serial.Open(&serial.Config{
		Device:      cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeoutMillis,
	})
	if err != nil {
		log.Fatalf("cooler-query: %v", err)
	}
	defer port.Close()

	switch command {
	case "info":
		err = printInfo(port)
	case "temps":
		err = printTemperatures(port, cfg.ZoneNames)
	case "watch":
		err = watch(port, cfg)
	default:
		log.Printf("unknown command %q", command)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("cooler-query: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *interval > 0 {
		cfg.PollIntervalSeconds = int(interval.Seconds())
		if cfg.PollIntervalSeconds < 1 {
			cfg.PollIntervalSeconds = 1
		}
	}
	return cfg, nil
}

func printInfo(port serial.Port) error {
	info, err := query.RequestInfo(port)
	if err != nil {
		return err
	}
	fmt.Printf("firmware:     %s\n", info.FirmwareVersion)
	fmt.Printf("zones:        %d\n", info.ZoneCount)
	fmt.Printf("sensor type:  %s\n", info.ZoneSensorsType)
	return nil
}

func printTemperatures(port serial.Port, zoneNames []string) error {
	temps, err := query.RequestTemperatures(port)
	if err != nil {
		return err
	}
	if len(temps) == 0 {
		return fmt.Errorf("device reported no readings")
	}
	fmt.Println(formatTemperatures(temps, zoneNames))
	return nil
}

func watch(port serial.Port, cfg *config.Config) error {
	ticker := time.NewTicker(time.Duration(cfg.PollIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		temps, err := query.RequestTemperatures(port)
		if err != nil {
			return err
		}
		log.Println(formatTemperatures(temps, cfg.ZoneNames))
		<-ticker.C
	}
}

func formatTemperatures(temps []float32, zoneNames []string) string {
	parts := make([]string, len(temps))
	for i, t := range temps {
		name := fmt.Sprintf("zone_%d", i)
		if i < len(zoneNames) {
			name = zoneNames[i]
		}
		if math.IsNaN(float64(t)) {
			parts[i] = fmt.Sprintf("%s=n/a", name)
		} else {
			parts[i] = fmt.Sprintf("%s=%.1fC", name, t)
		}
	}
	return strings.Join(parts, "  ")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: cooler-query [flags] <command>

Commands:
  info    Print device identification
  temps   Print one temperature reading per zone
  watch   Poll temperatures continuously

Flags:
`)
	flag.PrintDefaults()
}
