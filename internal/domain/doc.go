// Package domain models daily weather-history observations scraped from a
// station history page.
//
// # Data Source
//
// The history page (by default the Weather Underground daily history for
// VTSH, Songkhla) shows one table per day with one row per METAR report,
// roughly every 30 minutes. A day is chosen through three dropdowns (year,
// month by full English name, day) and a "View" button.
//
// # Table Conventions
//
// Column layout of a row (10 cells):
//
//	0 Time         "12:00 AM"      local clock time, kept as text
//	1 Temperature  "75 °F"
//	2 Dew Point    "72 °F"         ignored
//	3 Humidity     "40 %"
//	4 Wind         "SW"            direction, ignored
//	5 Wind Speed   "10 km/h"       sometimes "6 mph"
//	6 Wind Gust    "0 mph"         ignored
//	7 Pressure     "29.9 in"
//	8 Precip.      "0.0 in"        ignored
//	9 Condition    "Fair"
//
// Unit suffixes are removed but values are not parsed to numbers. Rows with
// fewer cells are dropped by [DecodeRow].
//
// Wind speed units:
//
//	The page mixes "km/h" and "mph" depending on the viewer's unit settings.
//	Both are stripped into the wind_speed_kmh CSV column for compatibility with
//	the downstream dashboard; the detected unit is carried on
//	[WeatherObservation].WindSpeedUnit for every other sink.
//
// # Output
//
// The CSV output uses [CSVHeader] and formats dates as M/D/YYYY (see
// [FormatDate]), the convention the dashboard's date parser expects.
package domain
