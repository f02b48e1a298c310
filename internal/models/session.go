package models

// ConnectionState describes the health of the live event stream connection.
type ConnectionState string

const (
	ConnDisconnected ConnectionState = "disconnected"
	ConnConnecting   ConnectionState = "connecting"
	ConnConnected    ConnectionState = "connected"
)

// UploadResponse is the server-issued record returned after a successful
// upload. It is stored verbatim and re-sent to trigger (or restart) analysis.
type UploadResponse struct {
	MD5       string `json:"md5"`
	FileName  string `json:"fileName"`
	SessionID string `json:"sessionId"`
	Date      string `json:"date"`
	Link      string `json:"link"`
	IndexName string `json:"indexName"`
}

// AnalysisRequest is the body posted to the analysis trigger endpoint.
type AnalysisRequest struct {
	SessionID string `json:"sessionId"`
	MD5       string `json:"md5"`
	FileName  string `json:"fileName"`
	Date      string `json:"date"`
	Link      string `json:"link"`
	IndexName string `json:"indexName"`
}

// TriggerRequest builds the analysis trigger body from an upload response.
// The session id is passed separately because the orchestrator may have
// rotated it since the upload.
func TriggerRequest(r *UploadResponse, sessionID string) AnalysisRequest {
	return AnalysisRequest{
		SessionID: sessionID,
		MD5:       r.MD5,
		FileName:  r.FileName,
		Date:      r.Date,
		Link:      r.Link,
		IndexName: r.IndexName,
	}
}
