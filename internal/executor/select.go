package executor

// selectEngine implements spec.md §4.5's engine-selection table:
//
//	data_size < AggregationFloor                       -> Embedded Analytic
//	AggregationFloor <= data_size < BigDataFloor        -> Aggregation-Model
//	                                 if shape is aggregation-heavy,
//	                                 else Embedded Analytic
//	data_size >= BigDataFloor                           -> Big-Data
//
// with source-kind overrides applied after the size-based pick: file
// sources never route to Aggregation-Model or Direct-SQL; API sources
// never route to Direct-SQL or bare Embedded, since neither has a way to
// fetch the remote payload, and fall back to Data-Frame instead; and an
// Embedded pick against a live remote database source prefers Direct-SQL
// instead, since the embedded engine has no connection to query a remote
// database with.
func (e *Executor) selectEngine(req Request) EngineTag {
	if req.EngineOverride != "" {
		return req.EngineOverride
	}

	tag := e.selectBySize(req)
	return e.applySourceOverrides(tag, req)
}

func (e *Executor) selectBySize(req Request) EngineTag {
	switch {
	case req.DataSize >= e.thresholds.BigDataFloor:
		return EngineBigData
	case req.DataSize >= e.thresholds.AggregationFloor:
		if isAggregationHeavy(req.Shape) {
			return EngineAggregation
		}
		return EngineEmbedded
	default:
		return EngineEmbedded
	}
}

func isAggregationHeavy(s QueryShape) bool {
	return s.HasAggregations || s.HasWindowFuncs
}

func (e *Executor) applySourceOverrides(tag EngineTag, req Request) EngineTag {
	switch req.Source.Kind {
	case SourceFile:
		if tag == EngineAggregation || tag == EngineDirectSQL {
			return EngineEmbedded
		}
	case SourceAPI:
		if tag == EngineDirectSQL || tag == EngineEmbedded {
			return EngineDataFrame
		}
	case SourceDatabase, SourceWarehouse:
		if tag == EngineEmbedded {
			return EngineDirectSQL
		}
	}
	return tag
}
