package graphio

import (
	"bytes"
	"html/template"
	"io"
	"strconv"

	"github.com/vharmon/flowsim/graphmodel"
	"github.com/vharmon/flowsim/mapping"
	"github.com/vharmon/flowsim/schedule"
)

// reportTemplate follows the table-per-concern layout of
// original_source/sadf/print/html/sadf2html.cc's SADF2HTML: one
// "<table frame=\"hsides\" cellpadding=\"5\">" per artifact, an embedded
// DOT render, and named anchors a caller can link into from elsewhere —
// generalised from SADF's per-scenario tables to flowsim's actor,
// channel, Pareto-front, schedule and NoC tables.
var reportTemplate = template.Must(template.New("report").Parse(`<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>{{.GraphName}} — flowsim report</title></head>
<body>
<h1>{{.GraphName}}</h1>

<h2>Graph</h2>
<div>{{.DOT}}</div>

<h2><a name="actors"></a>Actors</h2>
<table frame="hsides" cellpadding="5">
<tr><th>Name</th><th>Type</th><th>Exec time</th><th>Default</th></tr>
{{range .Actors}}{{$name := .Name}}{{range .Profiles}}<tr><td>{{$name}}</td><td>{{.Type}}</td><td>{{.ExecTime}}</td><td>{{.Default}}</td></tr>
{{end}}{{end}}</table>

<h2><a name="channels"></a>Channels</h2>
<table frame="hsides" cellpadding="5">
<tr><th>Name</th><th>Src</th><th>Dst</th><th>Initial tokens</th><th>Buffer size</th></tr>
{{range .Channels}}<tr><td><a name="{{.Name}}">{{.Name}}</a></td><td>{{.Src}}</td><td>{{.Dst}}</td><td>{{.InitialTokens}}</td><td>{{.BufferSize}}</td></tr>
{{end}}</table>

{{if .HasThroughput}}
<h2>Throughput</h2>
<p>{{.Throughput}}</p>
{{end}}

{{if .Front}}
<h2>Buffer/throughput Pareto front</h2>
<table frame="hsides" cellpadding="5">
<tr><th>Size</th><th>Throughput</th><th>Distributions</th></tr>
{{range .Front}}<tr><td>{{.Size}}</td><td>{{.Throughput}}</td><td>{{len .Distributions}}</td></tr>
{{end}}</table>
{{end}}

{{if .Schedule}}
<h2>Static-periodic schedule</h2>
<p>Period {{.Schedule.Period}}, periodicity {{.Schedule.Periodicity}}</p>
{{end}}

{{if .Binding}}
<h2>Binding report</h2>
<table frame="hsides" cellpadding="5">
<tr><th>Actor</th><th>Tile</th></tr>
{{range $actor, $tile := .Binding.TileOf}}<tr><td>{{$actor}}</td><td>{{$tile}}</td></tr>
{{end}}</table>
{{end}}

{{if .NoCRows}}
<h2>NoC communication schedule</h2>
<table frame="hsides" cellpadding="5">
<tr><th>Message</th><th>Start</th><th>Duration</th><th>Route</th><th>Slots</th></tr>
{{range .NoCRows}}<tr><td>{{.ID}}</td><td>{{.StartTime}}</td><td>{{.Duration}}</td><td>{{.Route}}</td><td>{{.Slots}}</td></tr>
{{end}}</table>
{{end}}

</body>
</html>
`))

type htmlChannel struct {
	Name          string
	Src, Dst      string
	InitialTokens int64
	BufferSize    string
}

type htmlData struct {
	GraphName     string
	DOT           template.HTML
	Actors        []*graphmodel.Actor
	Channels      []htmlChannel
	HasThroughput bool
	Throughput    string
	Front         []htmlFrontPoint
	Schedule      *schedule.Schedule
	Binding       *mapping.BindingReport
	NoCRows       []messageRow
}

type htmlFrontPoint struct {
	Size          int64
	Throughput    string
	Distributions int
}

// WriteHTML renders g and rep as a single self-contained HTML report,
// embedding the graph's DOT render inline as a <pre> block — browsers
// without a Graphviz renderer still get the structure, and a caller that
// wants a rasterised image can run the embedded DOT through a separate
// `dot` invocation the way sadf2html.cc shells out to one.
func WriteHTML(w io.Writer, g *graphmodel.Graph, rep Report) error {
	var dotBuf bytes.Buffer
	if err := WriteDOT(&dotBuf, g, rep.GraphName); err != nil {
		return err
	}

	actorName := make(map[int]string)
	for _, a := range g.Actors() {
		actorName[a.ID] = a.Name
	}

	var channels []htmlChannel
	for _, c := range g.Channels() {
		hc := htmlChannel{
			Name:          c.Name,
			Src:           actorName[c.SrcPort.ActorID],
			Dst:           actorName[c.DstPort.ActorID],
			InitialTokens: c.InitialTokens,
			BufferSize:    "unbounded",
		}
		if c.IsBounded() {
			hc.BufferSize = strconv.FormatInt(c.BufferSize, 10)
		}
		channels = append(channels, hc)
	}

	data := htmlData{
		GraphName: rep.GraphName,
		DOT:       template.HTML("<pre>" + template.HTMLEscapeString(dotBuf.String()) + "</pre>"),
		Actors:    g.Actors(),
		Channels:  channels,
		NoCRows:   messageRows(rep.NoC),
		Schedule:  rep.Schedule,
	}
	if rep.Throughput != nil {
		data.HasThroughput = true
		data.Throughput = formatThroughput(*rep.Throughput)
	}
	for _, set := range rep.Front {
		data.Front = append(data.Front, htmlFrontPoint{
			Size:          set.Size,
			Throughput:    formatThroughput(set.Throughput),
			Distributions: len(set.Distributions),
		})
	}
	if rep.Mapping != nil {
		data.Binding = &rep.Mapping.Binding
	}

	return reportTemplate.Execute(w, data)
}
