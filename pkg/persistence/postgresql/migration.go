package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE tenant_cms_configs (
				tenant_id VARCHAR(255) PRIMARY KEY,
				base_url TEXT NOT NULL,
				username VARCHAR(255) NOT NULL,
				app_password TEXT NOT NULL,
				is_active BOOLEAN NOT NULL DEFAULT true,
				last_tested_at TIMESTAMP WITH TIME ZONE,
				connection_status VARCHAR(20) NOT NULL DEFAULT 'not-tested'
					CHECK (connection_status IN ('connected', 'failed', 'not-tested')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_tenant_cms_configs_active ON tenant_cms_configs(is_active);

			CREATE TABLE drafts (
				id VARCHAR(255) PRIMARY KEY,
				company_id VARCHAR(255) NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				focus_keyword TEXT NOT NULL DEFAULT '',
				target_word_count INT NOT NULL DEFAULT 0,
				meta_title TEXT NOT NULL DEFAULT '',
				meta_description TEXT NOT NULL DEFAULT '',
				excerpt TEXT NOT NULL DEFAULT '',
				categories JSONB NOT NULL DEFAULT '[]',
				tags JSONB NOT NULL DEFAULT '[]',
				featured_image_url TEXT NOT NULL DEFAULT '',
				featured_image_required BOOLEAN NOT NULL DEFAULT false,
				status VARCHAR(30) NOT NULL
					CHECK (status IN ('draft', 'in-review', 'ready-to-publish', 'published')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_drafts_company_id ON drafts(company_id);

			CREATE TABLE content_blocks (
				draft_id VARCHAR(255) NOT NULL REFERENCES drafts(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				kind VARCHAR(20) NOT NULL
					CHECK (kind IN ('heading', 'paragraph', 'list', 'image', 'quote', 'code')),
				level INT NOT NULL DEFAULT 0,
				content TEXT NOT NULL DEFAULT '',
				alt_text TEXT NOT NULL DEFAULT '',
				language VARCHAR(50) NOT NULL DEFAULT '',
				sort_order INT NOT NULL,
				selected BOOLEAN NOT NULL DEFAULT false,
				metadata JSONB NOT NULL DEFAULT '{}',
				PRIMARY KEY (draft_id, id)
			);

			CREATE INDEX idx_content_blocks_order ON content_blocks(draft_id, sort_order, id);

			CREATE TABLE draft_publish_records (
				draft_id VARCHAR(255) PRIMARY KEY REFERENCES drafts(id) ON DELETE CASCADE,
				cms_post_id BIGINT,
				edit_url TEXT NOT NULL DEFAULT '',
				preview_url TEXT NOT NULL DEFAULT '',
				delivery_method VARCHAR(20) NOT NULL DEFAULT '',
				status VARCHAR(30) NOT NULL
					CHECK (status IN ('not-sent', 'draft-created', 'publish-failed')),
				error_kind VARCHAR(50) NOT NULL DEFAULT '',
				last_attempted_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
	}
}
