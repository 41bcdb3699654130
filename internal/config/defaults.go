package config

// Default returns the built-in configuration. The tables match the
// export this tool was written against; a config file can replace any
// of them wholesale.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Name:    "Centros de Bhakti yoga",
			Tagline: "La ciencia de la relación con el Supremo",
			URL:     "https://www.bhaktiyoga.es",
			Lang:    "es",
		},
		Nav: []NavItem{
			{Label: "Inicio", URL: "/"},
			{Label: "Enseñanzas", URL: "/contenido/", Children: []NavItem{
				{Label: "Contenido", URL: "/contenido/"},
				{Label: "Blog", URL: "/blog/"},
				{Label: "Librería", URL: "/libreria/"},
				{Label: "Curso de Bhakti Yoga", URL: "/curso-de-bhakti-yoga/"},
			}},
			{Label: "Comunidad", URL: "/estatutos/", Children: []NavItem{
				{Label: "Glosario", URL: "/glosario/"},
				{Label: "Revista", URL: "/revista/"},
				{Label: "La Casa de Krsna", URL: "/la-casa-de-krsna/"},
				{Label: "Catálogo", URL: "/catalogo/"},
				{Label: "Estatutos", URL: "/estatutos/"},
			}},
			{Label: "Contacto", URL: "/asistencia/"},
		},
		Tables: TablesConfig{
			Sections: map[string]string{
				"Blog":                 "blog",
				"Contenido":            "contenido",
				"Librería":             "libreria",
				"Eventos":              "eventos",
				"Talleres":             "talleres",
				"Conferencias":         "conferencias",
				"Videos":               "videos",
				"Catálogo":             "catalogo",
				"La Casa de Krsna":     "la-casa-de-krsna",
				"Curso de Bhakti yoga": "curso-de-bhakti-yoga",
				"Revista":              "revista",
				"Glosario":             "glosario",
				"The Book":             "prabhupada-now/the-book",
				"Passages":             "prabhupada-now/passages",
				"About":                "prabhupada-now/about",
				"Asistencia":           "asistencia",
			},
			SectionLabels: map[string]string{
				"blog":                 "Blog",
				"contenido":            "Contenido",
				"libreria":             "Librería",
				"conferencias":         "Conferencias",
				"talleres":             "Talleres",
				"eventos":              "Eventos",
				"glosario":             "Glosario",
				"videos":               "Videos",
				"revista":              "Revista",
				"curso-de-bhakti-yoga": "Curso de Bhakti yoga",
				"la-casa-de-krsna":     "La Casa de Krsna",
				"prabhupada-now":       "Prabhupada Now!",
				"estatutos":            "Estatutos",
				"catalogo":             "Catálogo",
				"asistencia":           "Asistencia",
			},
			NoiseSegments: []string{"untitled", "temas", "categorias"},
			SlugOverrides: map[string]string{
				"55e021b5b0194c9ebaba695a74433538": "/estatutos/",
				"4de5e2fd65e8460e90aeb8f0a256ecfc": "/contenido/",
				"8f04e519bdb746158a24ba0010b813ef": "/libreria/",
				"d8a09ede1598464693ac1750b9ba2cce": "/blog/",
				"361c82e1b1b7464ab15e16c230a2db53": "/",
				"2dbe846ade1b428ca98b39027e796313": "/centros/",
			},
			ManualCovers: map[string]string{
				"42bde06312f04b1ba7a3c4887b4af74f": "/assets/manual-del-bhakta-cover.png",
				"364ca98f8f7a4f23a502d7737356d6c8": "/assets/arsa-prayoga-cover.png",
				"37a84db2095e4657ab0a69980134103f": "/assets/arsa-prayoga-cover.png",
			},
			SkipTitles: []string{
				"Se ha recibido tu donativo",
				"Algo ha salido mal con la transacción",
			},
			MediaExts: []string{
				".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg",
				".pdf", ".mp4", ".mp3", ".m4a", ".ogg", ".wav",
			},
			NavKeywords:      []string{"INICIO", "CONTENIDO", "LIBRERÍA", "LIBRERIA"},
			FooterPhrase:     "Te gusta lo que hacemos",
			CopyrightMarks:   []string{"©", "Bhakti"},
			ContactPrefixes:  []string{"🏡", "☎️"},
			IconURLSubstring: "notion.so/icons/",
			UglyLinkPatterns: []string{
				"secure.notion-static.com",
				"s3-us-west-2.amazonaws.com",
				"notion-static.com",
				"prod-files-secure",
			},
			PodcastTitles: map[string]string{
				"la-ciencia-de-la-meditacion": "La ciencia de la meditación",
				"el-canto-del-mantra":         "El canto del mantra",
			},
			PodcastHosts: []string{"anchor.fm", "podcasters.spotify.com"},
			DomainCards: map[string]DomainCard{
				"a.co":       {Label: "Comprar en Amazon", Icon: "📖"},
				"amazon.es":  {Label: "Comprar en Amazon", Icon: "📖"},
				"forms.gle":  {Label: "Abrir formulario", Icon: "📝"},
				"calendly.com": {Remove: true},
			},
			FileTypes: map[string]FileType{
				".pdf":  {Category: "pdf", Label: "PDF"},
				".mp3":  {Category: "audio", Label: "MP3"},
				".mp4":  {Category: "video", Label: "Video"},
				".m4a":  {Category: "audio", Label: "Audio"},
				".ogg":  {Category: "audio", Label: "OGG"},
				".wav":  {Category: "audio", Label: "WAV"},
				".webm": {Category: "video", Label: "Video"},
				".zip":  {Category: "file", Label: "ZIP"},
				".epub": {Category: "file", Label: "EPUB"},
				".doc":  {Category: "file", Label: "DOC"},
				".docx": {Category: "file", Label: "DOCX"},
			},
			SiteHosts:   []string{"bhakti.pages.dev"},
			ExportHosts: []string{"notion.so", "notion.site"},
			HubSections: []string{
				"blog", "contenido", "libreria", "eventos", "talleres",
				"conferencias", "videos", "revista", "catalogo",
			},
		},
	}
}

// applyDefaults fills zero-valued fields after unmarshaling, so a
// config file only needs to state what differs.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Site.Name == "" {
		c.Site.Name = d.Site.Name
	}
	if c.Site.Lang == "" {
		c.Site.Lang = d.Site.Lang
	}
	if c.Paths.ContentDir == "" {
		c.Paths.ContentDir = "Site map"
	}
	if len(c.Nav) == 0 {
		c.Nav = d.Nav
	}

	t, dt := &c.Tables, d.Tables
	if len(t.Sections) == 0 {
		t.Sections = dt.Sections
	}
	if len(t.SectionLabels) == 0 {
		t.SectionLabels = dt.SectionLabels
	}
	if len(t.NoiseSegments) == 0 {
		t.NoiseSegments = dt.NoiseSegments
	}
	if len(t.SlugOverrides) == 0 {
		t.SlugOverrides = dt.SlugOverrides
	}
	if len(t.ManualCovers) == 0 {
		t.ManualCovers = dt.ManualCovers
	}
	if len(t.SkipTitles) == 0 {
		t.SkipTitles = dt.SkipTitles
	}
	if len(t.MediaExts) == 0 {
		t.MediaExts = dt.MediaExts
	}
	if len(t.NavKeywords) == 0 {
		t.NavKeywords = dt.NavKeywords
	}
	if t.FooterPhrase == "" {
		t.FooterPhrase = dt.FooterPhrase
	}
	if len(t.CopyrightMarks) == 0 {
		t.CopyrightMarks = dt.CopyrightMarks
	}
	if len(t.ContactPrefixes) == 0 {
		t.ContactPrefixes = dt.ContactPrefixes
	}
	if t.IconURLSubstring == "" {
		t.IconURLSubstring = dt.IconURLSubstring
	}
	if len(t.UglyLinkPatterns) == 0 {
		t.UglyLinkPatterns = dt.UglyLinkPatterns
	}
	if len(t.PodcastTitles) == 0 {
		t.PodcastTitles = dt.PodcastTitles
	}
	if len(t.PodcastHosts) == 0 {
		t.PodcastHosts = dt.PodcastHosts
	}
	if len(t.DomainCards) == 0 {
		t.DomainCards = dt.DomainCards
	}
	if len(t.FileTypes) == 0 {
		t.FileTypes = dt.FileTypes
	}
	if len(t.SiteHosts) == 0 {
		t.SiteHosts = dt.SiteHosts
	}
	if len(t.ExportHosts) == 0 {
		t.ExportHosts = dt.ExportHosts
	}
	if len(t.HubSections) == 0 {
		t.HubSections = dt.HubSections
	}
}
