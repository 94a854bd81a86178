// Command motor-governor closes a speed-control loop on one motor: hall
// sensor pulses in over GPIO, ESC pulse-width commands out over PWM,
// with console/MQTT command input and an HTTP status page.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/motor-governor/internal/command"
	"github.com/sweeney/motor-governor/internal/control"
	"github.com/sweeney/motor-governor/internal/esc"
	"github.com/sweeney/motor-governor/internal/mqtt"
	"github.com/sweeney/motor-governor/internal/pulse"
	"github.com/sweeney/motor-governor/internal/status"
	"github.com/sweeney/motor-governor/internal/web"
)

func main() {
	controlIv := flag.Duration("control", control.SampleWindow, "control tick interval (also the RPM sampling window)")
	statusIv := flag.Duration("status", 500*time.Millisecond, "status reporting interval while disabled/manual")
	heartbeat := flag.Duration("heartbeat", time.Minute, "MQTT heartbeat interval (0 to disable)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	gpioChip := flag.String("gpio-chip", "gpiochip0", "GPIO character device for the pulse input")
	pulsePin := flag.Int("pulse-pin", pulse.DefaultPin, "BCM line number for the hall sensor")
	pwmPin := flag.String("pwm-pin", esc.DefaultPin, "periph.io pin name for the ESC signal")
	ppr := flag.Int("ppr", 2, "hall sensor pulses per shaft revolution")
	neutral := flag.Int("neutral", control.DefaultNeutral, "neutral/idle pulse width in microseconds")
	target := flag.Int("target", control.DefaultTargetRPM, "initial target RPM")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")

	flag.Parse()

	if err := run(*controlIv, *statusIv, *heartbeat, *broker, *gpioChip, *pulsePin, *pwmPin, *ppr, *neutral, *target, *httpAddr); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(controlIv, statusIv, heartbeat time.Duration, broker, gpioChip string, pulsePin int, pwmPin string, ppr, neutral, target int, httpAddr string) error {
	// Misconfigured sensor resolution would turn into a division by zero
	// deep in the estimator; refuse to start instead.
	if ppr <= 0 {
		return fmt.Errorf("pulses per revolution must be positive, got %d", ppr)
	}
	// The estimator divides by the window in milliseconds and weighs
	// pulses by 2000/window, so sub-millisecond intervals divide by zero
	// and intervals past 2 s read every sample as 0 RPM.
	if controlIv < time.Millisecond || controlIv > 2*time.Second {
		return fmt.Errorf("control interval %v out of range [1ms, 2s]", controlIv)
	}
	if target <= 0 {
		return fmt.Errorf("target rpm must be positive, got %d", target)
	}
	if neutral < control.MinCommand || neutral > control.MaxCommand {
		return fmt.Errorf("neutral %d out of range [%d, %d]", neutral, control.MinCommand, control.MaxCommand)
	}

	// Pulse input
	var counter pulse.Counter
	edges, err := pulse.NewEdgeSource(gpioChip, pulsePin, &counter)
	if err != nil {
		return fmt.Errorf("init pulse input: %w", err)
	}
	defer edges.Close()

	// ESC output, armed at neutral
	port, err := esc.NewPWMPort(pwmPin, neutral)
	if err != nil {
		return fmt.Errorf("init esc output: %w", err)
	}
	defer port.Close()

	ctrl := control.NewController(control.Config{Neutral: neutral, TargetRPM: target})

	// MQTT is optional: a dead broker must not keep the governor from
	// running, the console still works.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	pub, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		log.Printf("mqtt unavailable, continuing without it: %v", err)
	} else {
		publisher = pub
		mqttStatus = pub
		defer pub.Close()
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		ControlMs:    controlIv.Milliseconds(),
		StatusMs:     statusIv.Milliseconds(),
		HeartbeatMs:  heartbeat.Milliseconds(),
		Broker:       broker,
		HTTPAddr:     httpAddr,
		GPIOChip:     gpioChip,
		PulsePin:     pulsePin,
		PWMPin:       pwmPin,
		PulsesPerRev: ppr,
		Neutral:      neutral,
	})

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	// Command intake: console lines and, when MQTT is up, the command
	// topic. Both feed the same channel consumed by the run loop.
	lines := make(chan string, 16)
	go readConsole(os.Stdin, lines)
	if pub != nil {
		if err := pub.SubscribeCommands(func(line string) { enqueueCommand(lines, line) }); err != nil {
			log.Printf("command topic subscribe failed: %v", err)
		}
	}

	log.Printf("started: control=%v status=%v broker=%s pulse=%s:%d pwm=%s ppr=%d neutral=%d target=%d",
		controlIv, statusIv, broker, gpioChip, pulsePin, pwmPin, ppr, neutral, target)

	// The poll tick only drives the elapsed-time checks; the scheduler
	// decides when control and status work actually runs.
	ticker := time.NewTicker(controlIv / 4)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sched := control.NewTickScheduler(controlIv, statusIv, time.Now())
	cfg := loopConfig{
		WindowMillis: controlIv.Milliseconds(),
		PulsesPerRev: ppr,
		Heartbeat:    heartbeat,
	}
	return runLoop(&counter, port, publisher, mqttStatus, tracker, ctrl, sched, cfg, time.Now, ticker.C, lines, sigCh)
}

// loopConfig carries the run loop tunables.
type loopConfig struct {
	WindowMillis int64
	PulsesPerRev int
	Heartbeat    time.Duration
}

func runLoop(counter *pulse.Counter, port esc.Port, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, ctrl *control.Controller, sched *control.TickScheduler, cfg loopConfig, now func() time.Time, tick <-chan time.Time, lines <-chan string, sig <-chan os.Signal) error {
	prevState := ctrl.State()
	lastHeartbeat := now()
	lastRPM := 0

	// publishTransition reports a state change, if one happened, to the
	// log and the broker.
	publishTransition := func(t time.Time) {
		state := ctrl.State()
		if state == prevState {
			return
		}
		log.Printf("state: %s -> %s (rpm=%d cmd=%d)", prevState, state, lastRPM, ctrl.Command())
		if publisher != nil {
			if err := publisher.Publish(mqtt.Transition{
				Timestamp: t,
				From:      prevState,
				To:        state,
				RPM:       lastRPM,
				Command:   ctrl.Command(),
			}); err != nil {
				log.Printf("publish error: %v", err)
			}
		}
		prevState = state
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			// Leave the ESC at neutral no matter what state we were in.
			ctrl.Stop()
			if err := port.Write(ctrl.Command()); err != nil {
				log.Printf("esc write error: %v", err)
			}
			publishTransition(now())

			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case line := <-lines:
			cmd, err := command.Parse(line)
			if err != nil {
				log.Printf("command error: %v", err)
				continue
			}
			if cmd.Kind == command.KindNone {
				continue
			}
			if err := command.Apply(cmd, ctrl); err != nil {
				log.Printf("command rejected: %v", err)
				continue
			}
			log.Printf("command: %s", cmd.Kind)

			// stop must force neutral on the same tick, not on the next
			// scheduled one.
			if cmd.Kind == command.KindStop {
				if err := port.Write(ctrl.Command()); err != nil {
					log.Printf("esc write error: %v", err)
				}
			}
			publishTransition(now())

		case <-tick:
			t := now()

			if sched.ControlDue(t) {
				drained := counter.Drain()
				tracker.AddPulses(drained)
				rpm := control.EstimateRPM(int(drained), cfg.WindowMillis, cfg.PulsesPerRev)
				lastRPM = rpm

				cmd := ctrl.Tick(rpm)
				if err := port.Write(cmd); err != nil {
					log.Printf("esc write error: %v", err)
				}
				publishTransition(t)

				state := ctrl.State()
				tracker.Update(state, rpm, ctrl.TargetRPM(), cmd, ctrl.CountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}

				// While the loop is closed the status line rides the
				// control cadence.
				if state == control.StateSoftStart || state == control.StateRegulating {
					log.Printf("status: state=%s rpm=%d target=%d cmd=%d", state, rpm, ctrl.TargetRPM(), cmd)
				}
			}

			if sched.StatusDue(t) {
				state := ctrl.State()
				if state == control.StateDisabled || state == control.StateManual {
					log.Printf("status: state=%s cmd=%d", state, ctrl.Command())
				}

				if cfg.Heartbeat > 0 && t.Sub(lastHeartbeat) >= cfg.Heartbeat {
					lastHeartbeat = t
					if publisher != nil {
						if mqttStatus != nil {
							tracker.SetMQTTConnected(mqttStatus.IsConnected())
						}
						snap := tracker.Snapshot()
						hbEvent := mqtt.SystemEvent{
							Timestamp:  t,
							Event:      "HEARTBEAT",
							RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
						}
						if err := publisher.PublishSystem(hbEvent); err != nil {
							log.Printf("heartbeat publish error: %v", err)
						}
					}
				}
			}
		}
	}
}

// enqueueCommand hands a remote command line to the run loop without
// blocking the broker client's callback goroutine. A full queue drops
// the line; the sender can retry.
func enqueueCommand(lines chan<- string, line string) {
	select {
	case lines <- line:
	default:
		log.Printf("command queue full, dropped: %q", line)
	}
}

// readConsole feeds stdin lines into the command channel.
func readConsole(r io.Reader, lines chan<- string) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		log.Printf("console read error: %v", err)
	}
}
