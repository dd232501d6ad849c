package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflow_rules (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				is_active BOOLEAN NOT NULL DEFAULT true,
				priority INT NOT NULL DEFAULT 0,
				trigger_type VARCHAR(50) NOT NULL,
				trigger_config JSONB NOT NULL DEFAULT '{}',
				conditions JSONB NOT NULL DEFAULT '[]',
				actions JSONB NOT NULL DEFAULT '[]',
				cooldown_hours INT,
				max_executions INT,
				requires_approval BOOLEAN NOT NULL DEFAULT false,
				approver_role VARCHAR(100) NOT NULL DEFAULT '',
				entity_types JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_rules_tenant ON workflow_rules(tenant_id);
			CREATE INDEX idx_workflow_rules_trigger_type ON workflow_rules(trigger_type);
			CREATE INDEX idx_workflow_rules_active ON workflow_rules(is_active);

			CREATE TABLE workflow_executions (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				rule_id UUID NOT NULL,
				rule_name VARCHAR(255) NOT NULL DEFAULT '',
				entity_type VARCHAR(50) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				trigger_type VARCHAR(50) NOT NULL,
				trigger_snapshot JSONB,
				condition_results JSONB,
				conditions_passed BOOLEAN NOT NULL DEFAULT false,
				actions_taken JSONB,
				result VARCHAR(50) NOT NULL,
				approved_by VARCHAR(255) NOT NULL DEFAULT '',
				approved_at TIMESTAMP WITH TIME ZONE,
				rejected_by VARCHAR(255) NOT NULL DEFAULT '',
				rejected_at TIMESTAMP WITH TIME ZONE,
				rejection_reason TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflow_executions_tenant ON workflow_executions(tenant_id);
			CREATE INDEX idx_workflow_executions_rule ON workflow_executions(rule_id);
			CREATE INDEX idx_workflow_executions_entity ON workflow_executions(entity_type, entity_id);
			CREATE INDEX idx_workflow_executions_result ON workflow_executions(result);

			CREATE TABLE entity_workflow_states (
				tenant_id VARCHAR(255) NOT NULL,
				rule_id UUID NOT NULL,
				entity_type VARCHAR(50) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				execution_count INT NOT NULL DEFAULT 0,
				last_executed_at TIMESTAMP WITH TIME ZONE,
				PRIMARY KEY (tenant_id, rule_id, entity_type, entity_id)
			);

			CREATE TABLE scheduled_actions (
				id UUID PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				rule_id UUID,
				entity_type VARCHAR(50) NOT NULL,
				entity_id VARCHAR(255) NOT NULL,
				action JSONB NOT NULL,
				fire_at TIMESTAMP WITH TIME ZONE NOT NULL,
				cancel_if JSONB NOT NULL DEFAULT '[]',
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				cancel_reason TEXT NOT NULL DEFAULT '',
				error TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				processed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_scheduled_actions_due ON scheduled_actions(status, fire_at);
			CREATE INDEX idx_scheduled_actions_tenant ON scheduled_actions(tenant_id);
		`,
	}
}
