package gateway

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/fenny-ai/fenny/pkg/fenny/session"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 8 << 20

// chatResponse is the reply shape consumed by the frontend.
type chatResponse struct {
	Response  string `json:"response"`
	FileCount int    `json:"file_count"`
}

// detailResponse is the error shape: {"detail": "..."}.
type detailResponse struct {
	Detail string `json:"detail"`
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (g *Gateway) writeError(w http.ResponseWriter, detail string, code int) {
	g.writeJSON(w, code, detailResponse{Detail: detail})
}

// handleIndex serves the embedded chat page at / only; anything else under
// the catch-all pattern is a 404.
func (g *Gateway) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		g.writeError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		g.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// handleChat implements POST /api/chat: resolve the session, validate and
// count uploads, route the message through the assistant and return the
// reply with the updated file count.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var files []*multipart.FileHeader
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			g.writeError(w, "invalid multipart form", http.StatusBadRequest)
			return
		}
		files = r.MultipartForm.File["files"]
	} else if err := r.ParseForm(); err != nil {
		g.writeError(w, "invalid form", http.StatusBadRequest)
		return
	}

	message := strings.TrimSpace(r.FormValue("message"))
	if message == "" {
		g.writeError(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}

	// Resolve or create the session. An expired or unknown session ID
	// silently gets a fresh session, same as none at all.
	var sess *session.Session
	if id := r.FormValue("session_id"); id != "" {
		sess = g.store.Get(id)
	}
	if sess == nil {
		sess = g.store.Create()
	}

	if len(files) > 0 {
		if err := g.validator.CheckCount(sess.FileCount(), len(files)); err != nil {
			g.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, fh := range files {
			if err := g.checkUpload(fh); err != nil {
				g.writeError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		sess.AddFiles(len(files))
	}

	sess.AddMessage(session.RoleUser, message)
	reply := g.assistant.Respond(r.Context(), sess, message)
	sess.AddMessage(session.RoleAssistant, reply)

	// The body shape is fixed; the session token travels in a header so
	// first-request clients can keep it.
	w.Header().Set("X-Session-ID", sess.ID)
	g.writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		FileCount: sess.FileCount(),
	})
}

// checkUpload validates one multipart file by size and type, sniffing the
// first bytes when the declared content type is missing or generic.
func (g *Gateway) checkUpload(fh *multipart.FileHeader) error {
	head := make([]byte, 512)
	if f, err := fh.Open(); err == nil {
		n, _ := io.ReadFull(f, head)
		head = head[:n]
		_ = f.Close()
	} else {
		head = nil
	}
	return g.validator.CheckFile(fh.Filename, fh.Size, fh.Header.Get("Content-Type"), head)
}

// handleClear implements POST /api/clear. Deleting an absent session is
// still a success.
func (g *Gateway) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		g.writeError(w, "invalid form", http.StatusBadRequest)
		return
	}

	id := r.FormValue("session_id")
	if id == "" {
		g.writeError(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	g.store.Delete(id)
	g.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Conversation cleared",
	})
}

// handleHealth implements GET /api/health.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		g.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"app_name":      g.appName,
		"sessions":      g.store.Count(),
		"tool_count":    g.registry.Count(),
		"tools":         g.registry.Names(),
		"llm_available": g.assistant.LLMAvailable(),
		"max_files_per_conversation": g.validator.MaxFiles(),
	})
}
