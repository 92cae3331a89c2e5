package report

import (
	"fmt"
	"html"
	"html/template"
	"io"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/KaramelBytes/atmscope/internal/density"
	"github.com/KaramelBytes/atmscope/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MapOptions tunes the density map heat layer.
type MapOptions struct {
	HeatRadius int
	HeatBlur   int
}

// DefaultMapOptions mirrors the configured defaults.
func DefaultMapOptions() MapOptions {
	return MapOptions{HeatRadius: 15, HeatBlur: 10}
}

type mapView struct {
	Title    string
	Center   orb.Point
	Zoom     int
	Features template.JS
	Heat     bool
	Radius   int
	Blur     int
	Legend   bool
}

// DensityMap renders every record as a marker styled by its ward's count,
// a heat layer over all points and a density legend.
func DensityMap(w io.Writer, recs []atm.Located, wards []density.Aggregate, opt MapOptions) error {
	if opt.HeatRadius <= 0 {
		opt.HeatRadius = DefaultMapOptions().HeatRadius
	}
	if opt.HeatBlur <= 0 {
		opt.HeatBlur = DefaultMapOptions().HeatBlur
	}
	fc := densityFeatures(recs, wards)
	ext := geo.Describe(atm.Points(recs))
	return render(w, fc, mapView{
		Title:  "ATM Density by Ward",
		Center: ext.Mean,
		Zoom:   11,
		Heat:   true,
		Radius: opt.HeatRadius,
		Blur:   opt.HeatBlur,
		Legend: true,
	})
}

// densityFeatures builds the density map markers. Popup and tooltip are
// HTML; every record field in them is escaped.
func densityFeatures(recs []atm.Located, wards []density.Aggregate) *geojson.FeatureCollection {
	byWard := density.Lookup(wards)
	fc := geojson.NewFeatureCollection()
	for _, r := range recs {
		n := byWard[r.Ward].Count
		f := newMarker(r, Tier(n), "glyphicon")
		ward := html.EscapeString(r.Ward)
		f.Properties["popup"] = fmt.Sprintf("<b>%s</b><br>Address: %s<br>Ward: %s (%d ATMs)<br>ZIP: %s",
			html.EscapeString(r.Name), html.EscapeString(r.Address), ward, n, html.EscapeString(r.ZipCode))
		f.Properties["tooltip"] = fmt.Sprintf("Ward %s: %d ATMs", ward, n)
		fc.Append(f)
	}
	return fc
}

// NameMap renders the locations of one ATM operator, zoomed to their spread.
func NameMap(w io.Writer, name string, recs []atm.Located) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range recs {
		f := newMarker(r, Style{Color: "blue", Icon: "university"}, "fa")
		f.Properties["popup"] = fmt.Sprintf("<b>%s</b><br>%s<br>ZIP: %s<br>Ward: %s",
			html.EscapeString(r.Name), html.EscapeString(r.Address), html.EscapeString(r.ZipCode), html.EscapeString(r.Ward))
		fc.Append(f)
	}
	ext := geo.Describe(atm.Points(recs))
	return render(w, fc, mapView{
		Title:  name + " ATM Locations",
		Center: ext.Mean,
		Zoom:   ZoomFor(ext),
	})
}

func newMarker(r atm.Located, st Style, prefix string) *geojson.Feature {
	f := geojson.NewFeature(r.Point)
	f.Properties["name"] = r.Name
	f.Properties["address"] = r.Address
	f.Properties["ward"] = r.Ward
	f.Properties["zipcode"] = r.ZipCode
	f.Properties["color"] = st.Color
	f.Properties["icon"] = st.Icon
	f.Properties["prefix"] = prefix
	return f
}

func render(w io.Writer, fc *geojson.FeatureCollection, v mapView) error {
	b, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	v.Features = template.JS(b)
	if err := mapTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css">
<link rel="stylesheet" href="https://netdna.bootstrapcdn.com/bootstrap/3.0.0/css/bootstrap-glyphicons.css">
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/4.7.0/css/font-awesome.min.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"></script>
{{- if .Heat}}
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
{{- end}}
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
{{- if .Legend}}
<div style="position: fixed; bottom: 50px; left: 50px; width: 200px; background-color: white; border: 2px solid grey; z-index: 9999; font-size: 14px; padding: 10px">
<p><b>ATM Density by Ward</b></p>
<p><i class="fa fa-fire" style="color:red"></i> 50+ ATMs</p>
<p><i class="fa fa-star" style="color:orange"></i> 30-49 ATMs</p>
<p><i class="fa fa-info-circle" style="color:gold"></i> 20-29 ATMs</p>
<p><i class="fa fa-check-circle" style="color:blue"></i> 10-19 ATMs</p>
<p><i class="fa fa-minus-circle" style="color:green"></i> &lt;10 ATMs</p>
</div>
{{- end}}
<script>
var map = L.map('map').setView([{{index .Center 1}}, {{index .Center 0}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var atms = {{.Features}};
L.geoJSON(atms, {
  pointToLayer: function (f, latlng) {
    var p = f.properties;
    var m = L.marker(latlng, {icon: L.AwesomeMarkers.icon({icon: p.icon, markerColor: p.color, prefix: p.prefix})});
    m.bindPopup(p.popup);
    if (p.tooltip) { m.bindTooltip(p.tooltip); }
    return m;
  }
}).addTo(map);
{{- if .Heat}}
L.heatLayer(atms.features.map(function (f) {
  return [f.geometry.coordinates[1], f.geometry.coordinates[0]];
}), {radius: {{.Radius}}, blur: {{.Blur}}, maxZoom: 1}).addTo(map);
{{- end}}
</script>
</body>
</html>
`))
