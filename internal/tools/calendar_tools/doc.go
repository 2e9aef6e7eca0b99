// Package calendar_tools implements the MCP tool for reading the user's
// Google Calendar, so the assistant can answer questions about upcoming
// appointments.
package calendar_tools
