package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"sheetpress/adapters/spreadsheet"
	"sheetpress/domain/table"
	"sheetpress/internal/consolidate"
	"sheetpress/internal/errors"
	"sheetpress/internal/session"
)

const sessionCookie = "sheetpress_session"

// maxUploadBytes caps a whole upload batch at 512MB; spreadsheets beyond
// that belong in the batch mode.
const maxUploadBytes = 512 << 20

// ensureSession returns the request's session, creating one (and setting
// the cookie) if needed.
func (a *App) ensureSession(w http.ResponseWriter, r *http.Request) *session.Session {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := a.sessions.Get(cookie.Value); ok {
			return sess
		}
	}
	sess := a.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
	})
	return sess
}

// currentSession returns the request's session without creating one.
func (a *App) currentSession(r *http.Request) (*session.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return a.sessions.Get(cookie.Value)
}

func (a *App) render(w http.ResponseWriter, name string, data interface{}) {
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("[UI] template %s failed: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleIndex shows the upload form and, when a session exists, its state.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		FileCount int
		HasSchema bool
		HasResult bool
		Error     string
	}{Error: r.URL.Query().Get("error")}

	if sess, ok := a.currentSession(r); ok {
		data.FileCount = len(sess.Files)
		data.HasSchema = len(sess.Schema) > 0
		result, _ := sess.Outcome()
		data.HasResult = result != nil
	}
	a.render(w, "index.html", data)
}

// handleUpload receives the spreadsheet files, resets the session, and
// establishes the reference schema from the first valid file.
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Redirect(w, r, "/?error=upload+too+large+or+malformed", http.StatusSeeOther)
		return
	}
	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Redirect(w, r, "/?error=no+files+selected", http.StatusSeeOther)
		return
	}

	// A new set of input files fully resets schema, types, and results.
	sess := a.ensureSession(w, r)
	sess = a.sessions.Reset(sess.ID)

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			http.Redirect(w, r, "/?error="+fh.Filename+"+could+not+be+read", http.StatusSeeOther)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Redirect(w, r, "/?error="+fh.Filename+"+could+not+be+read", http.StatusSeeOther)
			return
		}
		sess.Files = append(sess.Files, spreadsheet.BytesSource{FileName: fh.Filename, Data: data})
	}

	schema, types, warnings, err := a.consolidator.EstablishSchema(sess.Sources())
	if err != nil {
		http.Redirect(w, r, "/?error=could+not+read+column+headers+from+any+uploaded+file", http.StatusSeeOther)
		return
	}
	sess.Schema = schema
	sess.Types = types
	sess.Warnings = warnings

	http.Redirect(w, r, "/types", http.StatusSeeOther)
}

// handleTypesForm shows the per-column type confirmation form, seeded with
// the keyword-inferred defaults.
func (a *App) handleTypesForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok || len(sess.Schema) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	type columnRow struct {
		Index    int
		Name     string
		Selected table.ColumnType
	}
	data := struct {
		FileCount int
		Columns   []columnRow
		Options   []table.ColumnType
		Warnings  []consolidate.Warning
	}{
		FileCount: len(sess.Files),
		Options:   table.ColumnTypes,
		Warnings:  sess.Warnings,
	}
	for i, name := range sess.Schema {
		data.Columns = append(data.Columns, columnRow{Index: i, Name: name, Selected: sess.Types[name]})
	}
	a.render(w, "types.html", data)
}

// handleProcess freezes the confirmed type mapping and starts the
// consolidation off the request goroutine. The browser is sent to the
// progress page, which polls until the run finishes.
func (a *App) handleProcess(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok || len(sess.Schema) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/types", http.StatusSeeOther)
		return
	}

	// Build the confirmed type map on the side; only the request that wins
	// the busy claim below may publish it, so a double-submit cannot write
	// the shared map concurrently.
	confirmed := make(map[string]table.ColumnType, len(sess.Schema))
	for name, t := range sess.Types {
		confirmed[name] = t
	}
	for i, name := range sess.Schema {
		if v := r.PostFormValue(fmt.Sprintf("type_%d", i)); v != "" {
			confirmed[name] = table.ParseColumnType(v)
		}
	}

	if !sess.TryStart(len(sess.Files)) {
		http.Redirect(w, r, "/progress", http.StatusSeeOther)
		return
	}
	sess.Types = confirmed

	go func() {
		result, err := a.consolidator.Run(context.Background(), sess.Sources(), sess.Schema, confirmed,
			func(done, total int, file string) {
				sess.UpdateProgress(func(p *session.Progress) {
					p.Done = done
					p.Total = total
					p.File = file
				})
			})
		if err != nil {
			// SetOutcome clears the busy flag on this path too.
			sess.SetOutcome(nil, nil, userMessage(err))
			return
		}
		sess.SetOutcome(result, consolidate.BuildReport(result, confirmed), "")
	}()

	http.Redirect(w, r, "/progress", http.StatusSeeOther)
}

func userMessage(err error) string {
	if errors.HasCode(err, errors.CodeNoValidData) {
		return "No valid data found: every file was unreadable or mismatched the reference columns."
	}
	return err.Error()
}

// handleProgressPage renders the polling page.
func (a *App) handleProgressPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	a.render(w, "progress.html", sess.Snapshot())
}

// handleProgressJSON reports run progress for the polling page.
func (a *App) handleProgressJSON(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Error(w, `{"error":"no session"}`, http.StatusNotFound)
		return
	}
	progress := sess.Snapshot()
	result, _ := sess.Outcome()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"running":  progress.Running,
		"done":     progress.Done,
		"total":    progress.Total,
		"file":     progress.File,
		"error":    progress.Err,
		"finished": result != nil,
	})
}

// handlePreview shows the first rows of the consolidated table plus the run
// report, and offers the download.
func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	result, report := sess.Outcome()
	if result == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	const previewRows = 100
	rows := make([][]string, 0, previewRows)
	for _, row := range result.Frame.Head(previewRows) {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cell.Display()
		}
		rows = append(rows, cells)
	}

	a.render(w, "preview.html", struct {
		Columns    []string
		Rows       [][]string
		TotalRows  int
		ReportHTML interface{}
	}{
		Columns:    result.Frame.Columns,
		Rows:       rows,
		TotalRows:  result.Frame.NumRows(),
		ReportHTML: report.HTML(),
	})
}

// handleDownload streams the consolidated database as a file download. The
// database is built in a scratch file that is removed before this handler
// returns, whatever happens.
func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	result, _ := sess.Outcome()
	if result == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data, err := a.writer.WriteBytes(r.Context(), result.Frame, sess.Types)
	if err != nil {
		log.Printf("[UI] download build failed: %v", err)
		http.Error(w, "could not build the database: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="consolidated_data.db"`)
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}
