package jobs

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, source_path, output_path, title, status, remove_json, profile_json, subtitle_lang, want_subtitles, subtitle_path, subtitle_warning, cancel_requested, error_message, exit_code, stderr_tail, progress_stage, progress_percent, progress_message, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		sourcePath      string
		outputPath      string
		title           sql.NullString
		statusStr       string
		removeJSON      sql.NullString
		profileJSON     sql.NullString
		subtitleLang    sql.NullString
		wantSubtitles   sql.NullInt64
		subtitlePath    sql.NullString
		subtitleWarning sql.NullString
		cancelRequested sql.NullInt64
		errorMessage    sql.NullString
		exitCode        sql.NullInt64
		stderrTail      sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&outputPath,
		&title,
		&statusStr,
		&removeJSON,
		&profileJSON,
		&subtitleLang,
		&wantSubtitles,
		&subtitlePath,
		&subtitleWarning,
		&cancelRequested,
		&errorMessage,
		&exitCode,
		&stderrTail,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		SourcePath:      sourcePath,
		OutputPath:      outputPath,
		Title:           title.String,
		Status:          Status(statusStr),
		RemoveJSON:      removeJSON.String,
		ProfileJSON:     profileJSON.String,
		SubtitleLang:    subtitleLang.String,
		WantSubtitles:   wantSubtitles.Int64 != 0,
		SubtitlePath:    subtitlePath.String,
		SubtitleWarning: subtitleWarning.String,
		CancelRequested: cancelRequested.Int64 != 0,
		ErrorMessage:    errorMessage.String,
		ExitCode:        int(exitCode.Int64),
		StderrTail:      stderrTail.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
