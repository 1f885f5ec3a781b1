// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import "github.com/pdiddy/biomarker-engine/pkg/types"

type rawDefinition struct {
	biomarker types.Biomarker
	patterns  []string
	unit      types.Unit
	reference types.Range
	plausible types.Range
}

// definitionTable lists biomarkers in types.AllBiomarkers order.
var definitionTable = []rawDefinition{
	{
		biomarker: types.TotalCholesterol,
		patterns: []string{
			`(?i)(?:Total\s+)?Cholesterol[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)Cholesterol\s+Total[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)Total\s+Cholesterol[:\s]*(\d{2,4}(?:\.\d+)?)`,
			`(?i)Cholesterol[^0-9]{0,15}(\d{2,4}(?:\.\d+)?)`,
			`(?i)Chol[^0-9]{0,10}(\d{2,4}(?:\.\d+)?)`,
		},
		unit:      types.UnitMgDL,
		reference: types.Range{Min: 125, Max: 200},
		plausible: types.Range{Min: 50, Max: 600},
	},
	{
		biomarker: types.LDL,
		patterns: []string{
			`(?i)\bLDL[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)LDL\s+Cholesterol[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)Low\s+Density\s+Lipoprotein[:\s]*(\d{2,4}(?:\.\d+)?)`,
			`(?i)\bLDL[^a-zA-Z0-9]{0,10}(\d{2,4}(?:\.\d+)?)`,
			`(?i)LDL[^0-9]{0,15}(\d{2,4}(?:\.\d+)?)`,
		},
		unit:      types.UnitMgDL,
		reference: types.Range{Min: 0, Max: 100},
		plausible: types.Range{Min: 20, Max: 300},
	},
	{
		biomarker: types.HDL,
		patterns: []string{
			`(?i)\bHDL[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)HDL\s+Cholesterol[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)High\s+Density\s+Lipoprotein[:\s]*(\d{2,4}(?:\.\d+)?)`,
			`(?i)\bHDL[^a-zA-Z0-9]{0,10}(\d{2,4}(?:\.\d+)?)`,
			`(?i)HDL[^0-9]{0,15}(\d{2,4}(?:\.\d+)?)`,
		},
		unit:      types.UnitMgDL,
		reference: types.Range{Min: 40, Max: 60},
		plausible: types.Range{Min: 10, Max: 100},
	},
	{
		biomarker: types.Triglycerides,
		patterns: []string{
			`(?i)Triglycerides[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)TG[:\s]*(\d{2,4}(?:\.\d+)?)\s*(mg/dL|mg/dl|mg%|%)`,
			`(?i)Triglyceride[:\s]*(\d{2,4}(?:\.\d+)?)`,
			`(?i)Triglycerides[^0-9]{0,15}(\d{2,4}(?:\.\d+)?)`,
			`(?i)TG[^0-9]{0,10}(\d{2,4}(?:\.\d+)?)`,
		},
		unit:      types.UnitMgDL,
		reference: types.Range{Min: 0, Max: 150},
		plausible: types.Range{Min: 20, Max: 1000},
	},
	{
		biomarker: types.Creatinine,
		patterns: []string{
			`(?i)Creatinine[:\s]*(\d{1,3}(?:\.\d+)?)\s*(mg/dL|mg/dl|umol/L|μmol/L)`,
			`(?i)Serum\s+Creatinine[:\s]*(\d{1,3}(?:\.\d+)?)`,
			`(?i)Creat[^0-9]{0,10}(\d{1,3}(?:\.\d+)?)`,
			`(?i)Creatinine[^0-9]{0,15}(\d{1,3}(?:\.\d+)?)`,
		},
		unit:      types.UnitMgDL,
		reference: types.Range{Min: 0.6, Max: 1.3},
		plausible: types.Range{Min: 0.1, Max: 20},
	},
	{
		biomarker: types.VitaminD,
		patterns: []string{
			`(?i)Vitamin\s+D[:\s]*(\d{1,3}(?:\.\d+)?)\s*(ng/mL|ng/ml|nmol/L)`,
			`(?i)25-OH\s+Vitamin\s+D[:\s]*(\d{1,3}(?:\.\d+)?)`,
			`(?i)25-Hydroxyvitamin\s+D[:\s]*(\d{1,3}(?:\.\d+)?)`,
			`(?i)Vit\s*D[:\s]*(\d{1,3}(?:\.\d+)?)`,
			`(?i)Vitamin\s*D[^0-9]{0,15}(\d{1,3}(?:\.\d+)?)`,
			`(?i)Vit\s*D[^0-9]{0,10}(\d{1,3}(?:\.\d+)?)`,
		},
		unit:      types.UnitNgML,
		reference: types.Range{Min: 30, Max: 100},
		plausible: types.Range{Min: 1, Max: 200},
	},
	{
		biomarker: types.VitaminB12,
		patterns: []string{
			`(?i)Vitamin\s+B\s*12[:\s]*(\d{3,5}(?:\.\d+)?)\s*(pg/mL|pg/ml|pmol/L)`,
			`(?i)Vit\s*B\s*12[:\s]*(\d{3,5}(?:\.\d+)?)`,
			`(?i)Cobalamin[:\s]*(\d{3,5}(?:\.\d+)?)`,
			`(?i)Vitamin\s*B\s*12[^0-9]{0,15}(\d{3,5}(?:\.\d+)?)`,
			`(?i)B12[^0-9]{0,10}(\d{3,5}(?:\.\d+)?)`,
		},
		unit:      types.UnitPgML,
		reference: types.Range{Min: 200, Max: 900},
		plausible: types.Range{Min: 50, Max: 2000},
	},
	{
		biomarker: types.HbA1c,
		patterns: []string{
			`(?i)Hb\s*A1c[:\s]*(\d{1,2}(?:\.\d+)?)\s*(%|percent)`,
			`(?i)Glycated\s+Hemoglobin[:\s]*(\d{1,2}(?:\.\d+)?)`,
			`(?i)HbA1c[:\s]*(\d{1,2}(?:\.\d+)?)`,
			`(?i)Hb\s*A1c[^0-9]{0,15}(\d{1,2}(?:\.\d+)?)`,
			`(?i)A1c[^0-9]{0,10}(\d{1,2}(?:\.\d+)?)`,
		},
		unit:      types.UnitPercent,
		reference: types.Range{Min: 4.0, Max: 5.6},
		plausible: types.Range{Min: 3, Max: 20},
	},
}

var unitAliases = map[string]types.Unit{
	"mg/dL":   types.UnitMgDL,
	"mg/dl":   types.UnitMgDL,
	"mg%":     types.UnitMgDL,
	"%":       types.UnitPercent,
	"percent": types.UnitPercent,
	"ng/mL":   types.UnitNgML,
	"ng/ml":   types.UnitNgML,
	"pg/mL":   types.UnitPgML,
	"pg/ml":   types.UnitPgML,
	"umol/L":  types.UnitUmolL,
	"μmol/L":  types.UnitUmolL,
	"nmol/L":  types.UnitNmolL,
	"pmol/L":  types.UnitPmolL,
}

var legacyNames = map[string]types.Biomarker{
	"Total Cholesterol": types.TotalCholesterol,
	"LDL":               types.LDL,
	"HDL":               types.HDL,
	"Triglycerides":     types.Triglycerides,
	"Creatinine":        types.Creatinine,
	"Vitamin D":         types.VitaminD,
	"Vitamin B12":       types.VitaminB12,
	"HbA1c":             types.HbA1c,
}

const defaultRecommendation = "Continue monitoring and consult healthcare provider."

var recommendations = map[types.Biomarker]map[types.Status]string{
	types.TotalCholesterol: {
		types.StatusHigh: "Consider dietary changes, exercise, and medication if prescribed by your doctor.",
		types.StatusLow:  "Monitor for underlying health conditions that may cause low cholesterol.",
	},
	types.LDL: {
		types.StatusHigh: "Focus on heart-healthy diet, regular exercise, and consider medication.",
		types.StatusLow:  "Low LDL is generally good for heart health.",
	},
	types.HDL: {
		types.StatusHigh: "Excellent! High HDL is protective for heart health.",
		types.StatusLow:  "Increase physical activity and consider heart-healthy diet changes.",
	},
	types.Triglycerides: {
		types.StatusHigh: "Reduce sugar and refined carbs, increase physical activity.",
		types.StatusLow:  "Low triglycerides are generally beneficial.",
	},
	types.Creatinine: {
		types.StatusHigh: "Consult with healthcare provider about kidney function.",
		types.StatusLow:  "May indicate reduced muscle mass or other conditions.",
	},
	types.VitaminD: {
		types.StatusHigh: "Consider reducing supplementation and consult healthcare provider.",
		types.StatusLow:  "Increase sun exposure, dietary sources, or consider supplementation.",
	},
	types.VitaminB12: {
		types.StatusHigh: "High levels are usually not harmful but consult healthcare provider.",
		types.StatusLow:  "Consider B12 supplementation or dietary changes.",
	},
	types.HbA1c: {
		types.StatusHigh: "Focus on blood sugar management through diet, exercise, and medication.",
		types.StatusLow:  "Monitor for hypoglycemia or other conditions.",
	},
}
