package health

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderDashboardHTML returns the status page for GET /. The report is
// embedded as JSON and refreshed from /health/json a few times.
func RenderDashboardHTML(r Report) string {
	b, _ := json.Marshal(r)
	payload := strings.NewReplacer(`\`, `\\`, "`", "\\`", "$", `\$`).Replace(string(b))

	headline := "All Systems Operational"
	if r.Status != "ok" {
		headline = "System Issues Detected"
	}
	var ledgerRows string
	if r.Ledger != nil {
		ledgerRows = row("Assets", fmt.Sprint(r.Ledger.Assets)) +
			row("Bundles", fmt.Sprint(r.Ledger.Bundles)) +
			row("Open auctions", fmt.Sprint(r.Ledger.ActiveAuctions)) +
			row("Active rentals", fmt.Sprint(r.Ledger.ActiveRentals)) +
			row("Escrowed", fmt.Sprint(r.Ledger.Escrowed)) +
			row("Claimable", fmt.Sprint(r.Ledger.Claimable))
	}
	deps := ""
	for _, name := range []string{"database", "redis"} {
		d := r.Dependencies[name]
		ping := "--"
		if d.PingMs != nil {
			ping = fmt.Sprint(*d.PingMs)
		}
		deps += `<div class="row"><span>` + name + `</span><span id="dep-` + name + `" class="pill ` + pillClass(d.Status) + `">` + ping + ` ms</span></div>`
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Asset Ledger · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --ink: #1e293b; --ok: #047857; --bad: #dc2626; --muted: #64748b; --bg: #f8fafc; }
    body { background: var(--bg); color: var(--ink); font-family: system-ui, sans-serif; margin: 0; display: flex; justify-content: center; }
    .container { width: 100%; max-width: 1000px; padding: 40px 20px; }
    h1 { font-size: 42px; margin: 0 0 8px; letter-spacing: -1px; }
    .sub { color: var(--muted); margin-bottom: 30px; font-weight: 600; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 20px; }
    .card { background: white; border-radius: 16px; padding: 28px; box-shadow: 0 10px 40px -20px rgba(0,0,0,0.2); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 2px; color: var(--muted); font-weight: 800; margin-bottom: 16px; }
    .row { display: flex; justify-content: space-between; padding: 6px 0; border-bottom: 1px solid #f1f5f9; font-weight: 600; font-size: 14px; }
    .pill { padding: 3px 10px; border-radius: 8px; font-size: 12px; font-weight: 800; }
    .ok { background: #ecfdf5; color: var(--ok); }
    .err { background: #fef2f2; color: var(--bad); }
    a { color: var(--muted); font-weight: 700; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline">` + headline + `</h1>
    <div class="sub">Ledger, traffic and dependency status. <a href="/health/errors">Error log</a></div>
    <div class="grid">
      <div class="card">
        <div class="label">Traffic</div>
        <div id="traffic">` +
		row("Requests", fmt.Sprint(r.Traffic.TotalRequests)) +
		row("Failed", fmt.Sprint(r.Traffic.FailedCount)) +
		row("Success rate", r.Traffic.SuccessRate+"%") +
		row("Avg latency", r.Traffic.AvgResponseTime+"ms") + `</div>
      </div>
      <div class="card">
        <div class="label">Ledger</div>
        <div id="ledger">` + ledgerRows + `</div>
      </div>
      <div class="card">
        <div class="label">Dependencies</div>
        ` + deps + `
        ` + row("Uptime", fmt.Sprint(r.Runtime.UptimeSeconds)+"s") + row("Heap", fmt.Sprint(r.Runtime.HeapMB)+" MB") + row("Go", html.EscapeString(r.Runtime.GoVersion)) + `
      </div>
    </div>
  </div>
  <script>
    const initial = JSON.parse(` + "`" + payload + "`" + `);
    const row = (k, v) => '<div class="row"><span>' + k + '</span><span>' + v + '</span></div>';
    const render = (d) => {
      document.getElementById('headline').innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      const t = d.traffic;
      document.getElementById('traffic').innerHTML = row('Requests', t.totalRequests) + row('Failed', t.failedCount) + row('Success rate', t.successRate + '%') + row('Avg latency', t.avgResponseTime + 'ms');
      if (d.ledger) {
        const l = d.ledger;
        document.getElementById('ledger').innerHTML = row('Assets', l.assets) + row('Bundles', l.bundles) + row('Open auctions', l.active_auctions) + row('Active rentals', l.active_rentals) + row('Escrowed', l.escrowed) + row('Claimable', l.claimable);
      }
      for (const name of ['database', 'redis']) {
        const dep = d.dependencies[name]; const el = document.getElementById('dep-' + name);
        el.className = 'pill ' + (dep.status === 'connected' ? 'ok' : 'err'); el.innerText = (dep.pingMs != null ? dep.pingMs : '--') + ' ms';
      }
    };
    render(initial);
    let left = 3;
    const timer = setInterval(async () => {
      if (left-- <= 0) { clearInterval(timer); return; }
      try { const r = await fetch('/health/json'); render(await r.json()); } catch (e) {}
    }, 10000);
  </script>
</body>
</html>`
}

func row(k, v string) string {
	return `<div class="row"><span>` + k + `</span><span>` + html.EscapeString(v) + `</span></div>`
}

func pillClass(status string) string {
	if status == "connected" {
		return "ok"
	}
	return "err"
}
