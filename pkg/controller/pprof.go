package controller

import (
	"net/http"
	"net/http/pprof"
	"strings"
)

// PprofPrefix is where the profiling endpoints are mounted by default.
const PprofPrefix = "/debug/pprof/"

// PprofMux returns an http.ServeMux serving net/http/pprof handlers under
// prefix. pprof.Index resolves named profiles only below /debug/pprof/, so
// other prefixes are rewritten before reaching it.
func PprofMux(prefix string) *http.ServeMux {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	mux := http.NewServeMux()
	mux.HandleFunc(prefix+"cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"profile", pprof.Profile)
	mux.HandleFunc(prefix+"symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"trace", pprof.Trace)
	mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		if prefix != PprofPrefix {
			r2 := r.Clone(r.Context())
			r2.URL.Path = PprofPrefix + strings.TrimPrefix(r.URL.Path, prefix)
			r = r2
		}
		pprof.Index(w, r)
	})

	return mux
}
