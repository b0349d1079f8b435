package handlers

import (
	"fmt"
	"net/http"
)

// DashboardPage serves the self-contained HTML dashboard: streak metrics,
// badge list and a bar chart of daily events, all fed by the JSON API. No
// assets, no build step.
func (h *TrackerHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `
<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Meat-Eating Tracker</title>
	<style>
		body {
			font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif;
			color: #333;
			max-width: 900px;
			margin: 0 auto;
			padding: 20px;
			background-color: #f9f9f9;
		}
		.container { background-color: #fff; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
		h1 { color: #2c3e50; border-bottom: 2px solid #eee; padding-bottom: 10px; }
		.metrics { display: flex; gap: 30px; margin: 20px 0; }
		.metric { background-color: #e8f8ef; padding: 15px 25px; border-radius: 5px; }
		.metric .value { font-size: 2em; font-weight: bold; color: #27ae60; }
		.badge { display: inline-block; background-color: #f1c40f; color: #333; padding: 5px 12px; border-radius: 12px; margin: 3px; }
		.badge.archived { background-color: #bdc3c7; text-decoration: line-through; }
		.setback { background-color: #fdecea; color: #c0392b; padding: 12px; border-radius: 5px; margin: 15px 0; }
		#chart { width: 100%; height: 260px; }
		.row { margin: 15px 0; }
		input, button { padding: 8px; margin-right: 6px; }
		button { background-color: #27ae60; color: #fff; border: none; border-radius: 4px; cursor: pointer; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Meat-Eating Tracker</h1>
		<div class="row">
			<input id="username" placeholder="Enter your username">
			<button onclick="refresh()">Open my dashboard</button>
		</div>
		<div class="metrics">
			<div class="metric">🥗 Days without meat<div class="value" id="current">–</div></div>
			<div class="metric">🏆 Longest streak<div class="value" id="longest">–</div></div>
		</div>
		<div id="notice"></div>
		<div class="row" id="badges"></div>
		<canvas id="chart"></canvas>
		<div class="row">
			<input id="date" type="date">
			<input id="count" type="number" min="0" value="1">
			<button onclick="logDay()">Log</button>
			<button onclick="exportCSV()">📥 Download CSV</button>
		</div>
	</div>
	<script>
		function user() { return document.getElementById('username').value; }
		async function refresh() {
			const res = await fetch('/api/v1/tracker/dashboard', { headers: { 'X-Username': user() } });
			if (!res.ok) return;
			const d = await res.json();
			document.getElementById('current').textContent = d.current_streak + ' days';
			document.getElementById('longest').textContent = d.longest_streak + ' days';
			const notice = document.getElementById('notice');
			notice.innerHTML = d.setback_notice ? '<div class="setback">' + d.setback_notice + '</div>' : '';
			const badges = document.getElementById('badges');
			badges.innerHTML = '';
			for (const a of d.active_achievements || []) badges.innerHTML += '<span class="badge">' + a.label + '</span>';
			for (const a of d.archived_achievements || []) badges.innerHTML += '<span class="badge archived">' + a.label + '</span>';
			drawChart(d.series || []);
		}
		function drawChart(series) {
			const canvas = document.getElementById('chart');
			canvas.width = canvas.clientWidth;
			canvas.height = 260;
			const ctx = canvas.getContext('2d');
			ctx.clearRect(0, 0, canvas.width, canvas.height);
			if (!series.length) return;
			const max = Math.max(1, ...series.map(p => p.count));
			const bw = canvas.width / series.length;
			series.forEach((p, i) => {
				const h = (p.count / max) * (canvas.height - 30);
				ctx.fillStyle = p.count > 0 ? '#c0392b' : (p.logged ? '#27ae60' : '#dfe6e9');
				ctx.fillRect(i * bw, canvas.height - 20 - h, Math.max(1, bw - 1), Math.max(2, h));
			});
		}
		async function logDay() {
			await fetch('/api/v1/tracker/log', {
				method: 'POST',
				headers: { 'X-Username': user(), 'Content-Type': 'application/json' },
				body: JSON.stringify({ date: document.getElementById('date').value, count: parseInt(document.getElementById('count').value, 10) })
			});
			refresh();
		}
		function exportCSV() {
			window.location = '/api/v1/tracker/export?username=' + encodeURIComponent(user());
		}
	</script>
</body>
</html>
`)
}
