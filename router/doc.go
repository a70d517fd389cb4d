// Copyright (c) 2025 QuickPoll Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes using Go 1.22+ method routing.

# Route Map

	GET  /api/health              liveness probe
	POST /api/polls               create a poll
	GET  /api/polls/{id}          read a poll (filtered view)
	POST /api/polls/{id}/vote     cast a vote
	POST /api/polls/{id}/reveal   reveal quiz results (host only)
	GET  /api/polls/{id}/live     SSE live results
	GET  /api/polls/{id}/ws       WebSocket live results
	GET  /metrics                 Prometheus metrics
	GET  /                        service banner

Short-lived endpoints are wrapped in request logging; the two stream
endpoints are not, since a completion log after hours of streaming is
noise. The whole mux sits behind the CORS middleware so browser clients
on other origins can call the API.
*/
package router
