package formatter

const siteTemplateText = `{{header .Kind .Recipe .MaxLineNumWidth .Filename .Line .Column}}
{{snippet .SnippetLine .Line .MaxLineNumWidth .Padding}}
{{underlineAndMessage .Message .Padding .SnippetLine .Column .EndColumn}}
{{- if .Note}}
{{note .Note}}
{{- end}}

`
