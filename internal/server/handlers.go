package server

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/zsiec/rasterize/internal/cache"
	"github.com/zsiec/rasterize/internal/errors"
	"github.com/zsiec/rasterize/internal/logger"
	"github.com/zsiec/rasterize/internal/metrics"
	"github.com/zsiec/rasterize/pkg/version"
)

const (
	pngContentType  = "image/png"
	apngContentType = "image/apng"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// containerMeta recovers the frame count and animation flag from an
// encoded container by walking its chunks for an animation control chunk.
// Still PNGs report one frame. Used for cached payloads, which carry no
// metadata of their own.
func containerMeta(data []byte) (frames int, animated bool) {
	if !bytes.HasPrefix(data, pngMagic) {
		return 1, false
	}
	off := len(pngMagic)
	for off+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[off:]))
		if length < 0 {
			break
		}
		if string(data[off+4:off+8]) == "acTL" && off+12 <= len(data) {
			return int(binary.BigEndian.Uint32(data[off+8:])), true
		}
		off += 12 + length // length + type + data + crc
	}
	return 1, false
}

// handleConvert decodes the uploaded stream and responds with the encoded
// PNG or APNG container.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readInput(w, r)
	if !ok {
		return
	}

	log := logger.ForOperation(logger.FromContext(r.Context()), "convert")

	var key string
	if s.cache != nil {
		key = cache.Key("convert", data)
		if cached, err := s.cache.Get(r.Context(), key); err == nil {
			frames, animated := containerMeta(cached)
			contentType := pngContentType
			if animated {
				contentType = apngContentType
			}
			w.Header().Set("Content-Type", contentType)
			w.Header().Set("X-Frame-Count", strconv.Itoa(frames))
			w.Header().Set("X-Animated", strconv.FormatBool(animated))
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				log.WithError(err).Error("Failed to write cached conversion")
			}
			return
		}
	}

	start := time.Now()
	res, err := s.converter.Convert(data)
	if err != nil {
		metrics.RecordConversion("error", "none", time.Since(start).Seconds())
		metrics.IncrementConversionError(errorKind(err))
		s.errorHandler.HandleError(w, r, err)
		return
	}

	container := "png"
	contentType := pngContentType
	if res.Animated {
		container = "apng"
		contentType = apngContentType
	}
	metrics.RecordConversion("success", container, time.Since(start).Seconds())
	metrics.RecordConversionSize(len(data), len(res.Data), res.Frames)
	logger.WithContainer(log, container, res.Frames).Debug("Conversion finished")

	if s.cache != nil {
		if err := s.cache.Set(r.Context(), key, res.Data); err != nil {
			log.WithError(err).Warn("Failed to cache conversion result")
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Frame-Count", strconv.Itoa(res.Frames))
	w.Header().Set("X-Animated", strconv.FormatBool(res.Animated))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		log.WithError(err).Error("Failed to write conversion response")
	}
}

// handleProbe inspects the stream header and responds with its metadata.
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readInput(w, r)
	if !ok {
		return
	}

	log := logger.ForOperation(logger.FromContext(r.Context()), "probe")

	var key string
	if s.cache != nil {
		key = cache.Key("probe", data)
		if cached, err := s.cache.Get(r.Context(), key); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(cached); err != nil {
				log.WithError(err).Error("Failed to write cached probe")
			}
			return
		}
	}

	result, err := s.converter.Probe(data)
	if err != nil {
		metrics.IncrementProbe("error")
		s.errorHandler.HandleError(w, r, err)
		return
	}
	metrics.IncrementProbe("success")

	body, err := json.Marshal(result)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Set(r.Context(), key, body); err != nil {
			log.WithError(err).Warn("Failed to cache probe result")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.WithError(err).Error("Failed to write probe response")
	}
}

// handleVersion handles the /version endpoint
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if err := json.NewEncoder(w).Encode(version.Get()); err != nil {
		s.logger.WithError(err).Error("Failed to encode version response")
	}
}

// errorKind extracts the taxonomy kind for metrics labeling.
func errorKind(err error) string {
	if ce, ok := errors.GetConvertError(err); ok {
		return string(ce.Kind)
	}
	return string(errors.KindInternal)
}

// readInput reads the request body, translating the body-limit error into
// a 413.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		if _, tooLarge := err.(*http.MaxBytesError); tooLarge {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
		}
		return nil, false
	}
	return data, true
}
