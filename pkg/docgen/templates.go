package docgen

// builtinTemplates are the default artifact templates, used when the
// template directory has no override for a kind.
var builtinTemplates = map[ArtifactKind]string{
	KindReleaseNotes: `# {{PROJECT}} v{{VERSION}}

Released {{DATE}} ({{RELEASE_TYPE}} release).

{{CHANGES}}

---

_{{SUMMARY}} · timestamp {{TIMESTAMP}} ({{PROVENANCE}})_
`,

	KindChangelog: `# Changelog for v{{VERSION}}

Release type: {{RELEASE_TYPE}}
Date: {{DATE}}

{{CHANGES}}
`,

	KindReadmeBlock: `## Version Information

**Current version:** v{{VERSION}}
**Released:** {{DATE}}
**Release type:** {{RELEASE_TYPE}}

See [release notes](docs/RELEASE_v{{VERSION}}.md) for details.
`,

	KindIndex: `# Release Index

{{ENTRIES}}
`,
}
