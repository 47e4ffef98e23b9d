// Package monitoring serves the progress and the statistics of a running
// simulation over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	// Enable profiling
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/cachesim/monitoring/web"
	"github.com/sarchlab/cachesim/simulation"
)

// LevelView is what the monitor shows about a cache level.
type LevelView struct {
	Name             string
	Enabled          bool
	BlockSize        uint64
	ByteSize         uint64
	WayAssociativity int
	Stats            simulation.LevelStats
}

// MemoryView is what the monitor shows about the backing memory.
type MemoryView struct {
	Name    string
	Reads   uint64
	Writes  uint64
	Traffic uint64
}

// Monitor can turn a simulation into a server that reports its progress. It
// only reads the snapshots it observes, never the hierarchy itself.
type Monitor struct {
	portNumber  int
	openBrowser bool
	profileTime time.Duration

	lock      sync.Mutex
	config    simulation.Config
	hasConfig bool
	processed uint64
	snapshot  simulation.Snapshot

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
	trackedBars      []*ProgressBar

	metrics *metrics

	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		profileTime: time.Second,
		metrics:     newMetrics(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithOpenBrowser makes the monitor open its page once the server starts.
func (m *Monitor) WithOpenBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterConfig sets the configuration of the monitored hierarchy.
func (m *Monitor) RegisterConfig(config simulation.Config) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.config = config
	m.hasConfig = true
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// TrackProgress creates a progress bar that follows the number of processed
// accesses. A total of 0 means the length of the trace is unknown.
func (m *Monitor) TrackProgress(name string, total uint64) *ProgressBar {
	bar := m.CreateProgressBar(name, total)

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.trackedBars = append(m.trackedBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = removeBar(m.progressBars, pb)
	m.trackedBars = removeBar(m.trackedBars, pb)
}

func removeBar(bars []*ProgressBar, pb *ProgressBar) []*ProgressBar {
	newBars := make([]*ProgressBar, 0, len(bars))
	for _, b := range bars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	return newBars
}

// Observe receives a snapshot from the runner.
func (m *Monitor) Observe(processed uint64, snapshot simulation.Snapshot) {
	m.lock.Lock()
	m.processed = processed
	m.snapshot = snapshot
	m.lock.Unlock()

	m.progressBarsLock.Lock()
	for _, b := range m.trackedBars {
		b.SetFinished(processed)
	}
	m.progressBarsLock.Unlock()

	m.metrics.update(processed, snapshot)
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", err
	}

	m.listener = listener

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.router())
		if err != nil && !isClosedErr(err) {
			log.Panic(err)
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url, nil
}

// StopServer closes the listener of the server.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/stats", m.reportStats)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.Handle("/metrics", promhttp.HandlerFor(
		m.metrics.registry, promhttp.HandlerOpts{}))
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

func (m *Monitor) reportStats(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	snapshot := m.snapshot
	m.lock.Unlock()

	writeJSON(w, snapshot)
}

func (m *Monitor) components() []any {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.hasConfig {
		return nil
	}

	components := []any{
		&LevelView{
			Name:             "L1",
			Enabled:          true,
			BlockSize:        m.config.BlockSize,
			ByteSize:         m.config.L1Size,
			WayAssociativity: m.config.L1Assoc,
			Stats:            m.snapshot.L1,
		},
	}

	if m.config.L2Enabled() {
		components = append(components, &LevelView{
			Name:             "L2",
			Enabled:          true,
			BlockSize:        m.config.BlockSize,
			ByteSize:         m.config.L2Size,
			WayAssociativity: m.config.L2Assoc,
			Stats:            m.snapshot.L2,
		})
	}

	components = append(components, &MemoryView{
		Name:    "Memory",
		Reads:   m.snapshot.MemoryReads,
		Writes:  m.snapshot.MemoryWrites,
		Traffic: m.snapshot.MemoryTraffic,
	})

	return components
}

func componentName(c any) string {
	switch c := c.(type) {
	case *LevelView:
		return c.Name
	case *MemoryView:
		return c.Name
	default:
		return ""
	}
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := []string{}
	for _, c := range m.components() {
		names = append(names, componentName(c))
	}

	writeJSON(w, names)
}

func (m *Monitor) findComponentOr404(w http.ResponseWriter, name string) any {
	for _, c := range m.components() {
		if componentName(c) == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(2)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	views := make([]progressBarView, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		views = append(views, b.view())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, views)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(m.profileTime)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
