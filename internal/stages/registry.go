package stages

import "github.com/sarat-asymmetrica/dpam/internal/pipeline"

// Registry is the full 24-stage pipeline, in execution order. Stage 14 is
// intentionally absent: the source's numbering reserves it for an
// alternative equal-weighted partition variant this specification
// explicitly excludes (spec.md §9), so no stage 14 ever runs.
var Registry = pipeline.Registry{
	{ID: 1, Name: "PREPARE", Outputs: Stage1Outputs, Run: Stage1Prepare},
	{ID: 2, Name: "HHSEARCH", Outputs: Stage2Outputs, Run: Stage2HHsearch},
	{ID: 3, Name: "FOLDSEEK", Outputs: Stage3Outputs, Run: Stage3Foldseek},
	{ID: 4, Name: "FILTER_FOLDSEEK", Outputs: Stage4Outputs, Run: Stage4FilterFoldseek},
	{ID: 5, Name: "MAP_ECOD", Outputs: Stage5Outputs, Run: Stage5MapECOD},
	{ID: 6, Name: "DALI_CANDIDATES", Outputs: Stage6Outputs, Run: Stage6DaliCandidates},
	{ID: 7, Name: "ALIGN", Outputs: Stage7Outputs, Run: Stage7Align},
	{ID: 8, Name: "SCORE_HITS", Outputs: Stage8Outputs, Run: Stage8ScoreHits},
	{ID: 9, Name: "GET_SUPPORT", Outputs: Stage9Outputs, Run: Stage9Support},
	{ID: 10, Name: "FILTER_DOMAINS", Outputs: Stage10Outputs, Run: Stage10GoodDomains},
	{ID: 11, Name: "SSE", Outputs: Stage11Outputs, Run: Stage11SSE},
	{ID: 12, Name: "DISORDER", Outputs: Stage12Outputs, Run: Stage12Disorder},
	{ID: 13, Name: "PARTITION", Outputs: Stage13Outputs, Run: Stage13Partition},
	{ID: 15, Name: "FEATURES", Outputs: Stage15Outputs, Run: Stage15Features},
	{ID: 16, Name: "CLASSIFY", Outputs: Stage16Outputs, Run: Stage16Classify},
	{ID: 17, Name: "CONFIDENCE", Outputs: Stage17Outputs, Run: Stage17Confidence},
	{ID: 18, Name: "MAPPING", Outputs: Stage18Outputs, Run: Stage18Mapping},
	{ID: 19, Name: "MERGE", Outputs: Stage19_22Outputs, Run: Stage19_22Merge},
	{ID: 23, Name: "FINAL_CLASSIFY", Outputs: Stage23_24Outputs, Run: Stage23_24Final},
}
