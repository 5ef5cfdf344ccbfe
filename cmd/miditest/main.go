package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-keyboard/input"
	"go-keyboard/keyboard"
	"go-keyboard/midi"
	"go-keyboard/pitch"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "poll":
		pollDevices()
	case "monitor":
		err = monitor(arg(2))
	case "scale":
		err = scale(arg(2))
	default:
		usage()
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func arg(i int) string {
	if len(os.Args) > i {
		return os.Args[i]
	}
	return ""
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list           - List all MIDI ports")
	fmt.Println("  poll           - Poll for device changes")
	fmt.Println("  monitor <in>   - Print the notes held on an input")
	fmt.Println("  scale <out>    - Play a 24-EDO scale on an output")
}

func listPorts() error {
	fmt.Println("=== MIDI Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	dm := midi.NewDeviceManager(nil)
	if !dm.Scan() {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return nil
	}
	for i, p := range dm.Ports() {
		fmt.Printf("  %d: %-3s %s\n", i, p.Direction, p.Name)
	}
	return nil
}

func pollDevices() {
	fmt.Println("Polling for MIDI ports (Ctrl+C to stop)...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	dm := midi.NewDeviceManager(nil)
	go dm.Run(ctx)

	for ev := range dm.Events() {
		state := "connected"
		if ev.Type == midi.DeviceDisconnected {
			state = "disconnected"
		}
		fmt.Printf("[%s] %s %s: %s\n", time.Now().Format("15:04:05"), ev.Port.Direction, state, ev.Port.Name)
	}
}

func monitor(name string) error {
	l := midi.NewListener(func(notes []keyboard.Note) {
		fmt.Printf("[%s]", time.Now().Format("15:04:05.000"))
		for _, n := range notes {
			fmt.Printf(" ch%d:%s(%.2f)", n.Channel+1, pitch.Name(n.ID), n.Velocity)
		}
		fmt.Println()
	})
	if err := l.ListenByName(name); err != nil {
		return err
	}
	defer l.Close()

	fmt.Printf("Monitoring %q (Ctrl+C to stop)...\n", name)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
	return nil
}

func scale(name string) error {
	sink, err := midi.OpenSink(name)
	if err != nil {
		return err
	}
	defer sink.Close()

	for i := 0; i <= 24; i++ {
		ev := input.Event{ID: 60 + float64(i)/2, Velocity: 0.8, Gesture: uuid.New()}
		fmt.Printf("%-8s", pitch.Name(ev.ID))
		sink.KeyOn(ev)
		time.Sleep(250 * time.Millisecond)
		sink.KeyOff(ev)
	}
	fmt.Println()
	return sink.Err()
}
