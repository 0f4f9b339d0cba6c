// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package maskslog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mergeRecord struct {
	Message string `json:"msg"`
	Key     string `json:"key"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

func decode(t *testing.T, buf *bytes.Buffer) mergeRecord {
	t.Helper()

	var record mergeRecord
	err := json.Unmarshal(buf.Bytes(), &record)
	assert.Nil(t, err)
	return record
}

func isSecret(k string) bool {
	return strings.HasSuffix(k, "password")
}

func TestHandler_Handle(t *testing.T) {
	t.Run("will not mask attrs", func(t *testing.T) {
		t.Run("if no masking funcs are registered", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(slog.NewJSONHandler(&buf, nil)))

			logger.Info("merged config key", slog.String("key", "db.password"), slog.String("new", "hunter2"))

			record := decode(t, &buf)
			if !assert.Equal(t, "hunter2", record.New) {
				return
			}
		})

		t.Run("if the key attr is not sensitive", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, nil),
				Values("key", isSecret, "old", "new"),
			))

			logger.Info("merged config key", slog.String("key", "db.host"), slog.String("old", "a"), slog.String("new", "b"))

			record := decode(t, &buf)
			if !assert.Equal(t, "a", record.Old) {
				return
			}
			if !assert.Equal(t, "b", record.New) {
				return
			}
		})
	})

	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("if the key attr is sensitive", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, nil),
				Values("key", isSecret, "old", "new"),
			))

			logger.Info("merged config key", slog.String("key", "db.password"), slog.String("old", "a"), slog.String("new", "b"))

			record := decode(t, &buf)
			if !assert.Equal(t, "merged config key", record.Message) {
				return
			}
			if !assert.Equal(t, "db.password", record.Key) {
				return
			}
			if !assert.Equal(t, "****", record.Old) {
				return
			}
			if !assert.Equal(t, "****", record.New) {
				return
			}
		})

		t.Run("if an attr key matches a masking func", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewJSONHandler(&buf, nil),
				Attr("new", AnonymousStringAttr),
			))

			logger.Info("merged config key", slog.String("key", "printer"), slog.String("new", "seiko3"))

			record := decode(t, &buf)
			if !assert.Equal(t, "****", record.New) {
				return
			}
			if !assert.Equal(t, "printer", record.Key) {
				return
			}
		})
	})
}

func TestHandler_WithAttrs(t *testing.T) {
	t.Run("will mask attrs", func(t *testing.T) {
		t.Run("if the key matches a registered masking func", func(t *testing.T) {
			var buf bytes.Buffer
			var h slog.Handler = NewHandler(
				slog.NewJSONHandler(&buf, nil),
				Attr("new", AnonymousStringAttr),
			)
			h = h.WithAttrs([]slog.Attr{slog.String("new", "seiko3")})

			slog.New(h).Info("merged config key")

			record := decode(t, &buf)
			if !assert.Equal(t, "****", record.New) {
				return
			}
		})
	})

	t.Run("will keep masking record attrs", func(t *testing.T) {
		t.Run("if attrs were added", func(t *testing.T) {
			var buf bytes.Buffer
			var h slog.Handler = NewHandler(
				slog.NewJSONHandler(&buf, nil),
				Values("key", isSecret, "new"),
			)
			h = h.WithAttrs([]slog.Attr{slog.String("source", "command-line")})

			slog.New(h).Info("merged config key", slog.String("key", "password"), slog.String("new", "hunter2"))

			record := decode(t, &buf)
			if !assert.Equal(t, "****", record.New) {
				return
			}
		})
	})
}

func TestNested(t *testing.T) {
	isPassword := func(k string) bool {
		return k == "password"
	}

	t.Run("will mask sensitive keys", func(t *testing.T) {
		t.Run("if they are inside a mapping", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewTextHandler(&buf, nil),
				Nested(isPassword, "new"),
			))

			db := map[string]any{"host": "localhost", "password": "hunter2"}
			logger.Info("merged config key", slog.String("key", "db"), slog.Any("new", db))

			if !assert.Contains(t, buf.String(), `new="map[host:localhost password:****]"`) {
				return
			}
			if !assert.Equal(t, "hunter2", db["password"]) {
				return
			}
		})

		t.Run("if they are inside a sequence of mappings", func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewHandler(
				slog.NewTextHandler(&buf, nil),
				Nested(isPassword, "new"),
			))

			servers := []any{
				"plain",
				map[string]any{"password": map[string]any{"current": "hunter2"}},
			}
			logger.Info("merged config key", slog.String("key", "servers"), slog.Any("new", servers))

			logs := buf.String()
			if !assert.NotContains(t, logs, "hunter2") {
				return
			}
			if !assert.Contains(t, logs, "password:****") {
				return
			}
		})
	})

	t.Run("will leave values untouched", func(t *testing.T) {
		t.Run("if nothing inside them is sensitive", func(t *testing.T) {
			v := map[string]any{"host": "localhost"}
			out, masked := redact(v, isPassword)
			if !assert.False(t, masked) {
				return
			}
			if !assert.Equal(t, v, out) {
				return
			}
		})
	})
}
