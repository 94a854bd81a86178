package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/motor-governor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateClass": func(s string) string {
		switch s {
		case "REGULATING":
			return "regulating"
		case "SOFT_START":
			return "softstart"
		case "MANUAL":
			return "manual"
		default:
			return "disabled"
		}
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="2">
<title>Motor Governor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.regulating { color: green; font-weight: bold; }
.softstart { color: orange; font-weight: bold; }
.manual { color: steelblue; font-weight: bold; }
.disabled { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Motor Governor</h1>
<table>
<tr><th>State</th><td class="{{stateClass (printf "%s" .State)}}">{{.State}}</td></tr>
<tr><th>Measured RPM</th><td>{{.RPM}}</td></tr>
<tr><th>Target RPM</th><td>{{.TargetRPM}}</td></tr>
<tr><th>Command</th><td>{{.Command}} &micro;s</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Control ticks</th><td>{{.Counts.ControlTicks}}</td></tr>
<tr><th>Pulses total</th><td>{{.PulsesTotal}}</td></tr>
<tr><th>Commands accepted / rejected</th><td>{{.Counts.CommandsAccepted}} / {{.Counts.CommandsRejected}}</td></tr>
<tr><th>Soft starts</th><td>{{.Counts.SoftStartsRun}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>Pulse input</th><td>{{.Config.GPIOChip}} line {{.Config.PulsePin}}, {{.Config.PulsesPerRev}} pulses/rev</td></tr>
<tr><th>PWM output</th><td>{{.Config.PWMPin}}, neutral {{.Config.Neutral}} &micro;s</td></tr>
</table>
<p><a href="/index.json">index.json</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("render status page: %v", err)
	}
}
