package engine

import "github.com/vinthewrench/offgrid-weather-station/internal/modules/weather/types"

func updateExtrema(st *types.EngineState, r types.RawReading) {
	if r.TemperatureC != nil {
		t := *r.TemperatureC
		if !st.HaveTemp {
			st.TempHighC, st.TempLowC = t, t
			st.HaveTemp = true
		} else {
			st.TempHighC = max(st.TempHighC, t)
			st.TempLowC = min(st.TempLowC, t)
		}
	}

	if r.Humidity != nil {
		h := *r.Humidity
		if !st.HaveHum {
			st.HumHigh, st.HumLow = h, h
			st.HaveHum = true
		} else {
			st.HumHigh = max(st.HumHigh, h)
			st.HumLow = min(st.HumLow, h)
		}
	}

	if r.WindAvgMS != nil {
		avg := *r.WindAvgMS
		gust := avg
		if r.WindMaxMS != nil {
			gust = *r.WindMaxMS
		}
		if !st.HaveWind {
			st.HaveWind = true
			st.WindMeanMS = avg
			st.WindMaxGustMS = gust
			st.WindSampleCount = 1
			return
		}
		n := float64(st.WindSampleCount)
		st.WindMeanMS = (st.WindMeanMS*n + avg) / (n + 1)
		st.WindSampleCount++
		st.WindMaxGustMS = max(st.WindMaxGustMS, gust)
	}
}
