// ABOUTME: Request log storage operations.
// ABOUTME: Handles inserting and querying HTTP request logs.

package store

import (
	"fmt"
	"time"
)

// RequestLog represents an HTTP request log entry
type RequestLog struct {
	ID           int64
	Timestamp    time.Time
	RouteGroup   string
	Method       string
	Path         string
	StatusCode   int
	DurationMs   int
	DeviceID     string
	IPAddress    string
	UserAgent    string
	Error        string
	RequestBody  string
	ResponseBody string
}

// LogRequest inserts a request log entry
func (s *Store) LogRequest(log *RequestLog) error {
	_, err := s.db.Exec(`
		INSERT INTO request_logs (route_group, method, path, status_code, duration_ms, device_id, ip_address, user_agent, error, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.RouteGroup, log.Method, log.Path, log.StatusCode, log.DurationMs, log.DeviceID, log.IPAddress, log.UserAgent, log.Error, log.RequestBody, log.ResponseBody)
	return err
}

// RequestLogQuery represents filters for request logs
type RequestLogQuery struct {
	Limit      int
	Offset     int
	RouteGroup string
	Method     string
	PathPrefix string
	StatusCode int
	DeviceID   string
}

// RequestLogStats represents aggregate statistics
type RequestLogStats struct {
	TotalRequests   int
	TodayRequests   int
	ErrorRequests   int
	AvgDurationMs   int
	UniqueEndpoints int
	UniqueDevices   int
}

// GetRequestLogs retrieves request logs with filtering
func (s *Store) GetRequestLogs(q *RequestLogQuery) ([]*RequestLog, error) {
	query := `SELECT id, timestamp, COALESCE(route_group, ''), method, path, status_code, duration_ms,
	          COALESCE(device_id, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(error, ''),
	          COALESCE(request_body, ''), COALESCE(response_body, '')
	          FROM request_logs WHERE 1=1`
	args := []any{}

	if q.RouteGroup != "" {
		query += " AND route_group = ?"
		args = append(args, q.RouteGroup)
	}
	if q.Method != "" {
		query += " AND method = ?"
		args = append(args, q.Method)
	}
	if q.PathPrefix != "" {
		query += " AND path LIKE ?"
		args = append(args, q.PathPrefix+"%")
	}
	if q.StatusCode > 0 {
		query += " AND status_code = ?"
		args = append(args, q.StatusCode)
	}
	if q.DeviceID != "" {
		query += " AND device_id = ?"
		args = append(args, q.DeviceID)
	}

	query += " ORDER BY timestamp DESC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*RequestLog
	for rows.Next() {
		log := &RequestLog{}
		var timestamp string
		if err := rows.Scan(&log.ID, &timestamp, &log.RouteGroup, &log.Method, &log.Path, &log.StatusCode,
			&log.DurationMs, &log.DeviceID, &log.IPAddress, &log.UserAgent, &log.Error,
			&log.RequestBody, &log.ResponseBody); err != nil {
			return nil, err
		}
		log.Timestamp, _ = time.Parse("2006-01-02 15:04:05", timestamp)
		logs = append(logs, log)
	}
	return logs, nil
}

// GetRequestLogStats returns aggregate statistics
func (s *Store) GetRequestLogStats() (*RequestLogStats, error) {
	stats := &RequestLogStats{}
	today := time.Now().UTC().Format("2006-01-02")

	queries := []struct {
		dest  any
		query string
		args  []any
	}{
		{&stats.TotalRequests, "SELECT COUNT(*) FROM request_logs", nil},
		{&stats.TodayRequests, "SELECT COUNT(*) FROM request_logs WHERE date(timestamp) = ?", []any{today}},
		// 4xx and 5xx
		{&stats.ErrorRequests, "SELECT COUNT(*) FROM request_logs WHERE status_code >= 400", nil},
		{&stats.AvgDurationMs, "SELECT CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) FROM request_logs", nil},
		{&stats.UniqueEndpoints, "SELECT COUNT(DISTINCT path) FROM request_logs", nil},
		{&stats.UniqueDevices, "SELECT COUNT(DISTINCT device_id) FROM request_logs WHERE device_id != ''", nil},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("request log stats: %w", err)
		}
	}
	return stats, nil
}

// GetTopEndpoints returns the most frequently requested endpoints
func (s *Store) GetTopEndpoints(limit int) ([]map[string]any, error) {
	rows, err := s.db.Query(`
		SELECT path, COUNT(*) as count, AVG(duration_ms) as avg_ms
		FROM request_logs
		GROUP BY path
		ORDER BY count DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []map[string]any
	for rows.Next() {
		var path string
		var count int
		var avgMs float64
		if err := rows.Scan(&path, &count, &avgMs); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, map[string]any{
			"path":   path,
			"count":  count,
			"avg_ms": int(avgMs), // Round to int for display
		})
	}
	return endpoints, nil
}

// GroupStats summarises one route group over a time window.
type GroupStats struct {
	Group     string  `json:"group"`
	Requests  int     `json:"requests"`
	ErrorRate float64 `json:"error_rate"`
}

// GetGroupStats returns request count and error rate for each group since a given time.
func (s *Store) GetGroupStats(groups []string, since time.Time) ([]GroupStats, error) {
	out := make([]GroupStats, 0, len(groups))
	for _, group := range groups {
		count, err := s.GetGroupRequestCount(group, since)
		if err != nil {
			return nil, err
		}
		rate, err := s.GetGroupErrorRate(group, since)
		if err != nil {
			return nil, err
		}
		out = append(out, GroupStats{Group: group, Requests: count, ErrorRate: rate})
	}
	return out, nil
}

// sqliteTime matches the CURRENT_TIMESTAMP format stored in timestamp columns.
func sqliteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// GetGroupRequestCount returns the number of requests for a route group since a given time
func (s *Store) GetGroupRequestCount(group string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE route_group = ? AND timestamp >= ?
	`, group, sqliteTime(since)).Scan(&count)
	return count, err
}

// GetGroupErrorRate returns the error rate percentage for a route group since a given time
func (s *Store) GetGroupErrorRate(group string, since time.Time) (float64, error) {
	var totalCount, errorCount int

	// Get total requests
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE route_group = ? AND timestamp >= ?
	`, group, sqliteTime(since)).Scan(&totalCount)
	if err != nil {
		return 0, err
	}

	// No requests means 0% error rate
	if totalCount == 0 {
		return 0, nil
	}

	// Get error requests (status >= 400)
	err = s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE route_group = ? AND timestamp >= ? AND status_code >= 400
	`, group, sqliteTime(since)).Scan(&errorCount)
	if err != nil {
		return 0, err
	}

	// Calculate percentage
	return (float64(errorCount) / float64(totalCount)) * 100.0, nil
}
